package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/signature"
	"go.uber.org/zap"
)

// limiterIdleTTL 超过该时长未访问的限流桶被回收
const limiterIdleTTL = 10 * time.Minute

// RateLimit 限流中间件
// 读操作按客户端 IP 限流，写操作按声明的调用者地址限流（无地址头时退回 IP）
type RateLimit struct {
	logger     *zap.Logger
	limiters   map[string]*rateLimiter
	mu         sync.Mutex
	readLimit  int // 读操作每秒请求数，0 表示不限
	writeLimit int // 写操作每秒请求数，0 表示不限
	now        func() time.Time
	lastSweep  time.Time
}

// rateLimiter 简单的令牌桶限流器
type rateLimiter struct {
	tokens     int
	maxTokens  int
	lastRefill time.Time
	lastSeen   time.Time
}

// NewRateLimit 创建限流中间件
func NewRateLimit(logger *zap.Logger, readLimit, writeLimit int) *RateLimit {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimit{
		logger:     logger,
		limiters:   make(map[string]*rateLimiter),
		readLimit:  readLimit,
		writeLimit: writeLimit,
		now:        time.Now,
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		write := isWriteOperation(c.Request.Method)
		limit := m.readLimit
		key := "r:" + c.ClientIP()
		if write {
			limit = m.writeLimit
			key = "w:" + c.ClientIP()
			if addr := c.GetHeader(signature.HeaderAddress); addr != "" {
				key = "w:" + strings.ToLower(addr)
			}
		}

		if limit > 0 && !m.allowRequest(key, limit) {
			m.logger.Debug("Rate limit exceeded", zap.String("key", key))
			c.Header("Retry-After", "1")
			WriteProblemDetails(c, apitypes.NewProblemDetails(
				apitypes.CodeCommonRateLimited, apitypes.LayerGateway,
				"请求过于频繁，请稍后重试", "", http.StatusTooManyRequests,
				map[string]interface{}{"limit": limit}))
			return
		}

		c.Next()
	}
}

// allowRequest 检查是否允许请求
func (m *RateLimit) allowRequest(key string, limit int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = &rateLimiter{
			tokens:     limit,
			maxTokens:  limit,
			lastRefill: now,
		}
		m.limiters[key] = limiter
	}
	limiter.lastSeen = now
	return limiter.consume(now)
}

// sweep 回收空闲的限流桶
func (m *RateLimit) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < limiterIdleTTL {
		return
	}
	m.lastSweep = now
	for key, l := range m.limiters {
		if now.Sub(l.lastSeen) > limiterIdleTTL {
			delete(m.limiters, key)
		}
	}
}

// consume 消费一个令牌，每过一秒补满 maxTokens
func (r *rateLimiter) consume(now time.Time) bool {
	elapsed := now.Sub(r.lastRefill)
	if refill := int(elapsed.Seconds()) * r.maxTokens; refill > 0 {
		r.tokens += refill
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = now
	}

	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

func isWriteOperation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}
