package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/weisyn/socialmaker/internal/api/http/handlers"
	"github.com/weisyn/socialmaker/internal/api/http/middleware"
	"github.com/weisyn/socialmaker/internal/api/websocket"
	apiconfig "github.com/weisyn/socialmaker/internal/config/api"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
)

// LedgerReader 路由用到的账本读取能力
type LedgerReader interface {
	handlers.LedgerProbe
	websocket.LogReader
}

// RouterDeps 路由依赖
type RouterDeps struct {
	Options    *apiconfig.APIOptions
	Logger     log.Logger
	Social     socialiface.Service
	History    handlers.HistoryReader
	Content    handlers.ContentStore // 可为 nil
	Cache      storage.CacheStore    // 可为 nil，此时重放登记只在进程内
	Ledger     LedgerReader
	EventBus   event.EventBus // 可为 nil，此时不提供 /ws/logs
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	BufferSize int
	Version    string
}

// NewRouter 创建路由引擎并注册全部端点
//
//	/health            健康检查
//	/metrics           Prometheus 指标
//	/ws/logs           事件日志订阅
//	/api/v1/...        合约操作、历史与内容
func NewRouter(deps RouterDeps) *gin.Engine {
	opts := deps.Options
	if opts == nil {
		opts = apiconfig.New(nil).GetOptions()
	}
	zl := zap.NewNop()
	if deps.Logger != nil && deps.Logger.GetZapLogger() != nil {
		zl = deps.Logger.GetZapLogger()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.NewRequestID().Middleware(),
		middleware.NewLogger(deps.Logger).Middleware(),
		middleware.NewMetrics(zl, deps.Registerer).Middleware(),
		middleware.ErrorHandler(zl),
		middleware.NewRateLimit(zl, opts.ReadRateLimit, opts.WriteRateLimit).Middleware(),
	)

	handlers.NewHealthHandler(deps.Ledger, deps.Version, map[string]interface{}{
		"content": gin.H{"configured": deps.Content != nil},
		"events":  gin.H{"enabled": deps.EventBus != nil},
	}).RegisterRoutes(router)

	if opts.EnableMetrics && deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.EnableWebSocket && deps.EventBus != nil {
		websocket.NewServer(zl, deps.EventBus, deps.Ledger, deps.BufferSize).RegisterRoutes(router)
	}

	v1 := router.Group("/api/v1")
	public := v1.Group("", middleware.NewSeqAnchor(zl, deps.Ledger).Middleware())
	auth := middleware.NewSignatureValidation(zl, opts.SignatureMaxSkew, opts.MaxBodyBytes)
	if deps.Cache != nil {
		auth.WithReplayGuard(middleware.NewReplayGuard(deps.Cache))
	}
	signed := public.Group("", auth.Middleware())

	handlers.NewSocialHandlers(deps.Social, deps.Logger).RegisterRoutes(public, signed)
	handlers.NewHistoryHandlers(deps.History).RegisterRoutes(public)
	handlers.NewContentHandlers(deps.Content).RegisterRoutes(public, signed)

	return router
}
