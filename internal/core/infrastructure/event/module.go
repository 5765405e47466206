package event

import (
	eventconfig "github.com/weisyn/socialmaker/internal/config/event"
	logimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/config"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// ModuleParams 事件模块依赖
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Logger   log.Logger
}

// ModuleOutput 事件模块输出
type ModuleOutput struct {
	fx.Out

	EventBus event.EventBus
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建事件总线
func ProvideServices(params ModuleParams) ModuleOutput {
	cfg := eventconfig.New(params.Provider.GetEvent())
	return ModuleOutput{
		EventBus: New(cfg, logimpl.NewModuleLogger(params.Logger, logimpl.ModuleEvent)),
	}
}
