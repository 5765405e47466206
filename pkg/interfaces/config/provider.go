// Package config 定义配置提供者接口
package config

import (
	apiconfig "github.com/weisyn/socialmaker/internal/config/api"
	cacheconfig "github.com/weisyn/socialmaker/internal/config/cache"
	eventconfig "github.com/weisyn/socialmaker/internal/config/event"
	ipfsconfig "github.com/weisyn/socialmaker/internal/config/ipfs"
	ledgerconfig "github.com/weisyn/socialmaker/internal/config/ledger"
	logconfig "github.com/weisyn/socialmaker/internal/config/log"
	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/socialmaker/internal/config/storage/memory"
)

// Provider 配置提供者接口
// 每个 Get 方法返回已经合并了默认值与用户配置的完整选项
type Provider interface {
	// GetAppName 应用名称
	GetAppName() string

	// GetEnvironment 运行环境：dev | test | prod，未配置时为 prod
	GetEnvironment() string

	GetLog() *logconfig.LogOptions
	GetBadger() *badgerconfig.BadgerOptions
	GetMemory() *memoryconfig.MemoryOptions
	GetEvent() *eventconfig.EventOptions
	GetAPI() *apiconfig.APIOptions
	GetIPFS() *ipfsconfig.IPFSOptions
	GetCache() *cacheconfig.CacheOptions
	GetLedger() *ledgerconfig.LedgerOptions
}
