package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	infralog "github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
)

// Logger 访问日志中间件
type Logger struct {
	logger infralog.Logger
}

// NewLogger 创建访问日志中间件
func NewLogger(logger infralog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Middleware 返回Gin中间件
func (m *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if m.logger == nil {
			return
		}
		latency := time.Since(start)
		status := c.Writer.Status()

		zl := m.logger.GetZapLogger()
		if zl == nil {
			m.logger.Infof("HTTP %s %s status=%d latency=%s", c.Request.Method, path, status, latency)
			return
		}

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if caller, ok := CallerFrom(c); ok {
			fields = append(fields, zap.String("caller", caller.Hex()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			zl.Error("HTTP request", fields...)
		case status >= 400:
			zl.Warn("HTTP request", fields...)
		default:
			zl.Info("HTTP request", fields...)
		}
	}
}
