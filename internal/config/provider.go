package config

import (
	"github.com/weisyn/socialmaker/internal/config/api"
	"github.com/weisyn/socialmaker/internal/config/cache"
	"github.com/weisyn/socialmaker/internal/config/event"
	"github.com/weisyn/socialmaker/internal/config/ipfs"
	"github.com/weisyn/socialmaker/internal/config/ledger"
	"github.com/weisyn/socialmaker/internal/config/log"
	"github.com/weisyn/socialmaker/internal/config/storage/badger"
	"github.com/weisyn/socialmaker/internal/config/storage/memory"
	"github.com/weisyn/socialmaker/pkg/interfaces/config"
	"github.com/weisyn/socialmaker/pkg/types"
)

const (
	defaultAppName     = "socialmaker"
	defaultEnvironment = "prod"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者，appConfig 为 nil 时全部使用默认值
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// GetAppName 应用名称
func (p *Provider) GetAppName() string {
	if p.appConfig.AppName != nil && *p.appConfig.AppName != "" {
		return *p.appConfig.AppName
	}
	return defaultAppName
}

// GetEnvironment 运行环境，未知取值按 prod 处理
func (p *Provider) GetEnvironment() string {
	if p.appConfig.Environment != nil {
		switch env := *p.appConfig.Environment; env {
		case "dev", "test", "prod":
			return env
		}
	}
	return defaultEnvironment
}

// GetLog 获取日志配置
// 未显式配置日志路径时，日志写在数据根目录下的 logs/
func (p *Provider) GetLog() *log.LogOptions {
	opts := log.New(p.appConfig.Log).GetOptions()
	if (p.appConfig.Log == nil || p.appConfig.Log.FilePath == nil) && p.appConfig.Storage != nil && p.appConfig.Storage.DataRoot != nil {
		opts.FilePath = *p.appConfig.Storage.DataRoot + "/logs/social.log"
	}
	return opts
}

// GetBadger 获取 BadgerDB 配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	return badger.New(p.appConfig.Storage).GetOptions()
}

// GetMemory 获取内存缓存配置
func (p *Provider) GetMemory() *memory.MemoryOptions {
	return memory.New(p.appConfig.Cache).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	return event.New(p.appConfig.Event).GetOptions()
}

// GetAPI 获取 API 配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetIPFS 获取 IPFS 配置
func (p *Provider) GetIPFS() *ipfs.IPFSOptions {
	return ipfs.New(p.appConfig.IPFS).GetOptions()
}

// GetCache 获取文档缓存配置
func (p *Provider) GetCache() *cache.CacheOptions {
	return cache.New(p.appConfig.Cache).GetOptions()
}

// GetLedger 获取账本配置
func (p *Provider) GetLedger() *ledger.LedgerOptions {
	return ledger.New(p.appConfig.Ledger).GetOptions()
}
