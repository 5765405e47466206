package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Metrics 指标收集中间件
type Metrics struct {
	logger          *zap.Logger
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestSize     *prometheus.SummaryVec
	responseSize    *prometheus.SummaryVec
	reverts         *prometheus.CounterVec
}

// NewMetrics 创建指标中间件，reg 为 nil 时使用独立注册器
func NewMetrics(logger *zap.Logger, reg prometheus.Registerer) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		logger: logger,
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "social",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "social",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		requestSize: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:  "social",
				Subsystem:  "api",
				Name:       "request_size_bytes",
				Help:       "API request size in bytes",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"method", "route"},
		),
		responseSize: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:  "social",
				Subsystem:  "api",
				Name:       "response_size_bytes",
				Help:       "API response size in bytes",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"method", "route"},
		),
		reverts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "social",
				Subsystem: "api",
				Name:      "reverts_total",
				Help:      "Contract reverts returned to API clients, by revert name",
			},
			[]string{"code"},
		),
	}
}

// Middleware 返回Gin中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// 路由模板作为标签，未匹配的路由统一归为 unmatched
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if size := c.Request.ContentLength; size > 0 {
			m.requestSize.WithLabelValues(method, route).Observe(float64(size))
		}

		duration := time.Since(start)
		status := c.Writer.Status()
		m.requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.responseSize.WithLabelValues(method, route).Observe(float64(size))
		}
		if code, ok := c.Get(contextKeyRevert); ok {
			m.reverts.WithLabelValues(code.(string)).Inc()
		}

		m.logger.Debug("Request metrics collected",
			zap.String("method", method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
	}
}
