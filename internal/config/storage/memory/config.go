// Package memory 提供内存缓存（bigcache）配置
package memory

import (
	"time"

	"github.com/pbnjay/memory"
	"github.com/weisyn/socialmaker/pkg/types"
)

// MemoryOptions 内存缓存配置选项
type MemoryOptions struct {
	LifeWindow         time.Duration `json:"life_window"`
	CleanWindow        time.Duration `json:"clean_window"`
	Shards             int           `json:"shards"`
	MaxEntriesInWindow int           `json:"max_entries_in_window"`
	MaxEntrySize       int           `json:"max_entry_size"`
	HardMaxCacheSize   int           `json:"hard_max_cache_size"` // MB
}

// Config 内存缓存配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建内存缓存配置
// userConfig 为 *types.UserCacheConfig 时使用其中的 ttl 作为生命周期窗口，为 *MemoryOptions 时直接使用
func New(userConfig interface{}) *Config {
	if opts, ok := userConfig.(*MemoryOptions); ok && opts != nil {
		return &Config{options: opts}
	}
	options := &MemoryOptions{
		LifeWindow:         defaultLifeWindow,
		CleanWindow:        defaultCleanWindow,
		Shards:             defaultShards,
		MaxEntriesInWindow: defaultMaxEntriesInWindow,
		MaxEntrySize:       defaultMaxEntrySize,
		HardMaxCacheSize:   hardMaxCacheSize(memory.TotalMemory()),
	}
	if cache, ok := userConfig.(*types.UserCacheConfig); ok && cache != nil && cache.TTL != nil {
		if ttl, err := time.ParseDuration(*cache.TTL); err == nil && ttl > 0 {
			options.LifeWindow = ttl
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

// GetLifeWindow 条目生命周期
func (c *Config) GetLifeWindow() time.Duration {
	return c.options.LifeWindow
}

// GetCleanWindow 过期清理间隔
func (c *Config) GetCleanWindow() time.Duration {
	return c.options.CleanWindow
}

// GetShards 分片数（必须是 2 的幂）
func (c *Config) GetShards() int {
	return c.options.Shards
}

// GetMaxEntriesInWindow 窗口内预估条目数
func (c *Config) GetMaxEntriesInWindow() int {
	return c.options.MaxEntriesInWindow
}

// GetMaxEntrySize 单条目预估大小
func (c *Config) GetMaxEntrySize() int {
	return c.options.MaxEntrySize
}

// GetHardMaxCacheSize 缓存上限（MB）
func (c *Config) GetHardMaxCacheSize() int {
	return c.options.HardMaxCacheSize
}

// hardMaxCacheSize 默认上限取 defaultHardMaxCacheSize 与系统内存 1/16 的较小值
// totalBytes 为 0 表示无法探测系统内存
func hardMaxCacheSize(totalBytes uint64) int {
	if totalBytes == 0 {
		return defaultHardMaxCacheSize
	}
	limit := int(totalBytes / 16 / (1024 * 1024))
	if limit < minHardMaxCacheSize {
		return minHardMaxCacheSize
	}
	if limit > defaultHardMaxCacheSize {
		return defaultHardMaxCacheSize
	}
	return limit
}
