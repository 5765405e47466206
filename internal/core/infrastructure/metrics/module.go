// Package metrics 提供进程级 Prometheus 注册器
//
// 账本计数器与 HTTP 中间件指标注册在同一个注册器上，由 /metrics 统一暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// ModuleOutput 指标模块输出
type ModuleOutput struct {
	fx.Out

	Registry   *prometheus.Registry
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Module 返回指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建注册器并挂载运行时采集器
func ProvideServices() ModuleOutput {
	reg := NewRegistry()
	return ModuleOutput{
		Registry:   reg,
		Registerer: reg,
		Gatherer:   reg,
	}
}

// NewRegistry 创建带 Go 运行时与进程采集器的注册器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
