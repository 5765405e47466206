package cache

import "time"

// 文档缓存默认配置
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	defaultBackend   = BackendMemory
	defaultRedisAddr = "127.0.0.1:6379"
	defaultRedisDB   = 0
	defaultKeyPrefix = "social:doc:"
	defaultTTL       = 24 * time.Hour
)
