package api

import "time"

// API 默认配置
const (
	defaultHost     = "127.0.0.1"
	defaultHTTPPort = 8680

	// defaultSignatureMaxSkew 请求签名时间戳允许的最大偏差
	defaultSignatureMaxSkew = 5 * time.Minute

	defaultEnableMetrics   = true
	defaultEnableWebSocket = true

	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second

	// defaultMaxBodyBytes 请求体上限 1MB，链上只存 32 字节指针
	defaultMaxBodyBytes = 1 << 20

	// 每秒请求数，0 表示不限
	defaultReadRateLimit  = 100
	defaultWriteRateLimit = 10
)
