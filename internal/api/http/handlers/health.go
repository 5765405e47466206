package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httptypes "github.com/weisyn/socialmaker/internal/api/http/types"
)

// LedgerProbe 账本存活探测
type LedgerProbe interface {
	LastSeq(ctx context.Context) (uint64, error)
}

// HealthHandler 健康检查端点处理器
//
// - /health: 完整健康报告
// - /health/live: 存活检查
// - /health/ready: 就绪检查（账本可读）
type HealthHandler struct {
	ledger     LedgerProbe
	version    string
	startTime  time.Time
	components map[string]interface{}
}

// NewHealthHandler 创建健康检查处理器，components 为附加的静态组件信息
func NewHealthHandler(ledger LedgerProbe, version string, components map[string]interface{}) *HealthHandler {
	if components == nil {
		components = make(map[string]interface{})
	}
	return &HealthHandler{
		ledger:     ledger,
		version:    version,
		startTime:  time.Now(),
		components: components,
	}
}

// RegisterRoutes 注册健康检查路由
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	health := r.Group("/health")
	health.GET("", h.GetHealth)
	health.GET("/live", h.GetLiveness)
	health.GET("/ready", h.GetReadiness)
}

// GetHealth 完整健康报告
func (h *HealthHandler) GetHealth(c *gin.Context) {
	components := make(map[string]interface{}, len(h.components)+1)
	for k, v := range h.components {
		components[k] = v
	}

	status := "healthy"
	seq, err := h.ledger.LastSeq(c.Request.Context())
	if err != nil {
		status = "unhealthy"
		components["ledger"] = gin.H{"status": "down", "error": err.Error()}
	} else {
		components["ledger"] = gin.H{"status": "up", "lastSeq": seq}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, httptypes.HealthResponse{
		Status:     status,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Truncate(time.Second).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	})
}

// GetLiveness 存活检查
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// GetReadiness 就绪检查
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	if _, err := h.ledger.LastSeq(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
