// Package cache 提供 IPFS 文档缓存配置
package cache

import (
	"time"

	"github.com/weisyn/socialmaker/pkg/types"
)

// CacheOptions 文档缓存配置选项
type CacheOptions struct {
	Backend       string        `json:"backend"` // memory | redis
	RedisAddr     string        `json:"redis_addr"`
	RedisPassword string        `json:"-"`
	RedisDB       int           `json:"redis_db"`
	KeyPrefix     string        `json:"key_prefix"`
	TTL           time.Duration `json:"ttl"`
}

// Config 文档缓存配置实现
type Config struct {
	options *CacheOptions
}

// New 创建文档缓存配置，未知 backend 回退为 memory
func New(userConfig interface{}) *Config {
	options := &CacheOptions{
		Backend:   defaultBackend,
		RedisAddr: defaultRedisAddr,
		RedisDB:   defaultRedisDB,
		KeyPrefix: defaultKeyPrefix,
		TTL:       defaultTTL,
	}
	if user, ok := userConfig.(*types.UserCacheConfig); ok && user != nil {
		if user.Backend != nil && (*user.Backend == BackendMemory || *user.Backend == BackendRedis) {
			options.Backend = *user.Backend
		}
		if user.RedisAddr != nil && *user.RedisAddr != "" {
			options.RedisAddr = *user.RedisAddr
		}
		if user.RedisPassword != nil {
			options.RedisPassword = *user.RedisPassword
		}
		if user.RedisDB != nil && *user.RedisDB >= 0 {
			options.RedisDB = *user.RedisDB
		}
		if user.KeyPrefix != nil {
			options.KeyPrefix = *user.KeyPrefix
		}
		if user.TTL != nil {
			if d, err := time.ParseDuration(*user.TTL); err == nil && d > 0 {
				options.TTL = d
			}
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *CacheOptions {
	return c.options
}

// IsRedis 是否使用 Redis 后端
func (c *Config) IsRedis() bool {
	return c.options.Backend == BackendRedis
}
