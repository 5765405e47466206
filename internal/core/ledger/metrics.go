package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 调用结果标签
const (
	resultCommitted = "committed"
	resultReverted  = "reverted"
	resultFailed    = "failed"
)

// Metrics 账本指标
type Metrics struct {
	calls    *prometheus.CounterVec
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastSeq  prometheus.Gauge
}

// NewMetrics 在给定注册器上创建账本指标，reg 为 nil 时使用独立注册器
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "social",
				Subsystem: "ledger",
				Name:      "calls_total",
				Help:      "Total number of ledger calls by call name and result",
			},
			[]string{"call", "result"}, // committed, reverted, failed
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "social",
				Subsystem: "ledger",
				Name:      "events_total",
				Help:      "Total number of committed event logs by event name",
			},
			[]string{"event"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "social",
				Subsystem: "ledger",
				Name:      "call_duration_seconds",
				Help:      "Ledger call duration in seconds, lock wait included",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"call"},
		),
		lastSeq: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "social",
			Subsystem: "ledger",
			Name:      "last_seq",
			Help:      "Sequence number of the last committed event log",
		}),
	}
}
