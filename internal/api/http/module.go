package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/socialmaker/internal/app/version"
	logimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/internal/core/ipfs"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social/history"
	"github.com/weisyn/socialmaker/pkg/interfaces/config"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
)

// ModuleParams HTTP 模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Provider   config.Provider
	Logger     log.Logger
	Social     socialiface.Service
	History    *history.Service
	Ledger     *ledger.Ledger
	IPFS       *ipfs.Client          `optional:"true"`
	Cache      storage.CacheStore    `optional:"true"`
	EventBus   event.EventBus        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Gatherer   prometheus.Gatherer   `optional:"true"`
}

// ModuleOutput HTTP 模块输出
type ModuleOutput struct {
	fx.Out

	Server *Server
}

// Module 返回 HTTP 模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建HTTP服务器并注册生命周期钩子
func ProvideServices(params ModuleParams) ModuleOutput {
	logger := logimpl.NewModuleLogger(params.Logger, logimpl.ModuleAPI)
	if params.Provider.GetEnvironment() != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := RouterDeps{
		Options:    params.Provider.GetAPI(),
		Logger:     logger,
		Social:     params.Social,
		History:    params.History,
		Ledger:     params.Ledger,
		Cache:      params.Cache,
		EventBus:   params.EventBus,
		Registerer: params.Registerer,
		Gatherer:   params.Gatherer,
		Version:    version.GetVersion(),
	}
	if params.IPFS != nil {
		deps.Content = params.IPFS
	}
	if ev := params.Provider.GetEvent(); ev != nil {
		if !ev.Enabled {
			deps.EventBus = nil
		}
		deps.BufferSize = ev.BufferSize
	}

	server := NewServer(NewRouter(deps), deps.Options, logger)
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return ModuleOutput{Server: server}
}
