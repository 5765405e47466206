package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	logimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 账本模块依赖
type ModuleParams struct {
	fx.In

	Store      storage.BadgerStore
	EventBus   event.EventBus
	Logger     log.Logger
	Registerer prometheus.Registerer `optional:"true"`
}

// ModuleOutput 账本模块输出
type ModuleOutput struct {
	fx.Out

	Ledger *Ledger
}

// Module 返回账本模块
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建账本
func ProvideServices(params ModuleParams) ModuleOutput {
	logger := logimpl.NewModuleLogger(params.Logger, logimpl.ModuleLedger)
	return ModuleOutput{
		Ledger: New(params.Store, params.EventBus, logger, WithMetrics(NewMetrics(params.Registerer))),
	}
}
