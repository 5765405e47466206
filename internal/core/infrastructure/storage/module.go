// Package storage 提供存储模块装配
package storage

import (
	"context"
	"fmt"

	cacheconfig "github.com/weisyn/socialmaker/internal/config/cache"
	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/socialmaker/internal/config/storage/memory"
	logimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/redis"
	"github.com/weisyn/socialmaker/pkg/interfaces/config"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 存储模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider
	Logger    log.Logger
}

// ModuleOutput 存储模块输出
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore // 账本状态与事件日志
	CacheStore  storageInterface.CacheStore  // IPFS 文档缓存
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 打开 BadgerDB 与文档缓存，并在应用停止时关闭
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger := logimpl.NewModuleLogger(params.Logger, logimpl.ModuleStorage)

	badgerStore, err := badger.New(badgerconfig.New(params.Provider.GetBadger()), logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	cacheStore, err := newCacheStore(params.Provider, logger)
	if err != nil {
		_ = badgerStore.Close()
		return ModuleOutput{}, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("正在关闭存储服务...")
			if err := cacheStore.Close(); err != nil {
				logger.Warnf("关闭文档缓存失败: %v", err)
			}
			return badgerStore.Close()
		},
	})

	return ModuleOutput{
		BadgerStore: badgerStore,
		CacheStore:  cacheStore,
	}, nil
}

// newCacheStore 按 cache.backend 选择 Redis 或 bigcache
func newCacheStore(provider config.Provider, logger log.Logger) (storageInterface.CacheStore, error) {
	cacheOpts := provider.GetCache()
	if cacheOpts.Backend == cacheconfig.BackendRedis {
		store, err := redis.New(context.Background(), redis.Options{
			Addr:       cacheOpts.RedisAddr,
			Password:   cacheOpts.RedisPassword,
			DB:         cacheOpts.RedisDB,
			KeyPrefix:  cacheOpts.KeyPrefix,
			DefaultTTL: cacheOpts.TTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("创建 Redis 文档缓存失败: %w", err)
		}
		return store, nil
	}

	store, err := memory.New(memoryconfig.New(provider.GetMemory()), logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}
