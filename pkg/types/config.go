// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
//
// 🔧 零值陷阱处理：
// 所有字段均为指针，nil 表示用户未设置（使用默认值），&value 表示用户明确设置
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	Version *string `json:"version,omitempty"`  // 应用版本

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 事件配置
	Event *UserEventConfig `json:"event,omitempty"`

	// IPFS 固定服务配置
	IPFS *UserIPFSConfig `json:"ipfs,omitempty"`

	// 文档缓存配置
	Cache *UserCacheConfig `json:"cache,omitempty"`

	// 账本配置
	Ledger *UserLedgerConfig `json:"ledger,omitempty"`
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	Host             *string `json:"host,omitempty"`               // 监听地址
	HTTPPort         *int    `json:"http_port,omitempty"`          // HTTP端口
	SignatureMaxSkew *string `json:"signature_max_skew,omitempty"` // 签名时间戳最大偏差，如 "5m"
	EnableMetrics    *bool   `json:"enable_metrics,omitempty"`     // 是否开启 /metrics
	EnableWebSocket  *bool   `json:"enable_websocket,omitempty"`   // 是否开启 /ws/logs
	ReadRateLimit    *int    `json:"read_rate_limit,omitempty"`    // 读操作每 IP 每秒请求数，0 不限
	WriteRateLimit   *int    `json:"write_rate_limit,omitempty"`   // 写操作每地址每秒请求数，0 不限
}

// UserStorageConfig 用户存储配置
// 统一使用 data_root 作为数据根目录，badger 数据位于 {data_root}/badger
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录
	InMemory *bool   `json:"in_memory,omitempty"` // 是否使用内存模式（数据不持久化）
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserEventConfig 用户事件配置
type UserEventConfig struct {
	Enabled    *bool `json:"enabled,omitempty"`     // 是否启用事件总线
	BufferSize *int  `json:"buffer_size,omitempty"` // 订阅推送缓冲区
}

// UserIPFSConfig 用户IPFS固定服务配置
type UserIPFSConfig struct {
	PinningURL *string `json:"pinning_url,omitempty"` // 固定服务API地址
	JWT        *string `json:"jwt,omitempty"`         // 固定服务访问令牌
	GatewayURL *string `json:"gateway_url,omitempty"` // 内容网关地址
	Timeout    *string `json:"timeout,omitempty"`     // 单次请求超时，如 "10s"
	MaxRetries *int    `json:"max_retries,omitempty"` // 网关读取最大重试次数
}

// UserCacheConfig 用户文档缓存配置
type UserCacheConfig struct {
	Backend       *string `json:"backend,omitempty"`        // memory | redis
	RedisAddr     *string `json:"redis_addr,omitempty"`     // Redis 地址
	RedisPassword *string `json:"redis_password,omitempty"` // Redis 密码
	RedisDB       *int    `json:"redis_db,omitempty"`       // Redis 数据库编号
	KeyPrefix     *string `json:"key_prefix,omitempty"`     // 键前缀
	TTL           *string `json:"ttl,omitempty"`            // 缓存有效期，如 "24h"
}

// UserLedgerConfig 用户账本配置
type UserLedgerConfig struct {
	RegistryAddress *string `json:"registry_address,omitempty"` // 注册表合约地址（十六进制）
}
