// Package badger 提供 BadgerDB 存储配置
package badger

import (
	"path/filepath"

	"github.com/weisyn/socialmaker/pkg/types"
)

// BadgerOptions BadgerDB 配置选项
type BadgerOptions struct {
	DataRoot         string `json:"data_root"`
	InMemory         bool   `json:"in_memory"`
	SyncWrites       bool   `json:"sync_writes"`
	MemTableSize     int64  `json:"mem_table_size"`
	ValueLogFileSize int64  `json:"value_log_file_size"`
	CacheSize        int64  `json:"cache_size"`
}

// Config BadgerDB 配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建 BadgerDB 配置，userConfig 支持 *types.UserStorageConfig 或 *BadgerOptions
func New(userConfig interface{}) *Config {
	if opts, ok := userConfig.(*BadgerOptions); ok && opts != nil {
		return &Config{options: opts}
	}

	options := &BadgerOptions{
		DataRoot:         defaultDataRoot,
		InMemory:         defaultInMemory,
		SyncWrites:       defaultSyncWrites,
		MemTableSize:     defaultMemTableSize,
		ValueLogFileSize: defaultValueLogFileSize,
		CacheSize:        defaultCacheSize,
	}
	if storage, ok := userConfig.(*types.UserStorageConfig); ok && storage != nil {
		if storage.DataRoot != nil && *storage.DataRoot != "" {
			options.DataRoot = *storage.DataRoot
		}
		if storage.InMemory != nil {
			options.InMemory = *storage.InMemory
		}
	}
	return &Config{options: options}
}

// NewInMemory 内存模式配置，测试与临时节点使用
func NewInMemory() *Config {
	inMemory := true
	cfg := New(&types.UserStorageConfig{InMemory: &inMemory})
	cfg.options.MemTableSize = inMemoryMemTableSize
	cfg.options.CacheSize = inMemoryMemTableSize
	return cfg
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 数据目录
func (c *Config) GetPath() string {
	return filepath.Join(c.options.DataRoot, "badger")
}

// IsInMemory 是否内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWritesEnabled 是否同步写
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

// GetValueLogFileSize value log 文件大小
func (c *Config) GetValueLogFileSize() int64 {
	return c.options.ValueLogFileSize
}

// GetCacheSize block/index 缓存大小
func (c *Config) GetCacheSize() int64 {
	return c.options.CacheSize
}
