package app

import (
	"context"
	"fmt"

	"github.com/weisyn/socialmaker/internal/api"
	config "github.com/weisyn/socialmaker/internal/config"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/event"
	log "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/metrics"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage"
	"github.com/weisyn/socialmaker/internal/core/ipfs"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social"
	"github.com/weisyn/socialmaker/internal/core/social/history"
	configiface "github.com/weisyn/socialmaker/pkg/interfaces/config"
	"go.uber.org/fx"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 基础设施层：配置、日志、指标、事件、存储
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configiface.AppOptions { return b.opts }),
		config.Module(),  // 1. 配置(不依赖其他)
		log.Module(),     // 2. 日志(依赖配置)
		metrics.Module(), // 3. 指标注册器
		event.Module(),   // 4. 事件总线(依赖配置和日志)
		storage.Module(), // 5. 存储(依赖配置和日志)
	}
}

// SetupBusinessLayer 业务层：账本 -> 合约服务 -> 内容 -> 历史
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		ledger.Module(),
		social.Module(),
		ipfs.Module(),
		history.Module(),
	}
}

// SetupApplicationLayer 应用层
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{api.Module()}
}

// SetupModules 按依赖顺序组合全部模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupBusinessLayer()...)
	modules = append(modules, b.SetupApplicationLayer()...)
	return modules
}

// CreateFxApp 创建fx应用
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),
		fx.NopLogger,
	)
	return b.fxApp.Err()
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
