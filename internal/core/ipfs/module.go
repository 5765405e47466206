package ipfs

import (
	cacheconfig "github.com/weisyn/socialmaker/internal/config/cache"
	ipfsconfig "github.com/weisyn/socialmaker/internal/config/ipfs"
	logimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/config"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams IPFS 模块依赖
type ModuleParams struct {
	fx.In

	Provider   config.Provider
	Logger     log.Logger
	CacheStore storage.CacheStore
}

// ModuleOutput IPFS 模块输出
type ModuleOutput struct {
	fx.Out

	Client *Client
}

// Module 返回 IPFS 模块
func Module() fx.Option {
	return fx.Module("ipfs",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建固定服务客户端
func ProvideServices(params ModuleParams) ModuleOutput {
	logger := logimpl.NewModuleLogger(params.Logger, logimpl.ModuleIPFS)
	cacheOpts := cacheconfig.New(nil).GetOptions()
	if opts := params.Provider.GetCache(); opts != nil {
		cacheOpts = opts
	}

	cache := NewDocumentCache(params.CacheStore, cacheOpts.TTL)
	client := NewClient(params.Provider.GetIPFS(), cache, logger)
	if params.Provider.GetIPFS().JWT == "" {
		logger.Warnf("未配置固定服务令牌（%s），文档固定不可用", ipfsconfig.EnvJWT)
	}
	return ModuleOutput{Client: client}
}
