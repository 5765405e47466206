package app

import (
	"github.com/weisyn/socialmaker/pkg/interfaces/config"
	"github.com/weisyn/socialmaker/pkg/types"
)

// Option 节点启动选项
type Option func(*options)

// options 启动选项，实现 config.AppOptions
type options struct {
	configFilePath string
	embeddedConfig []byte

	// 已解析的配置，设置后跳过文件加载
	appConfig *types.AppConfig

	// 加载配置之后再叠加的覆盖项
	dataRoot string
	inMemory bool

	enableAPI bool
}

var _ config.AppOptions = (*options)(nil)

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(configPath string) Option {
	return func(o *options) { o.configFilePath = configPath }
}

// WithEmbeddedConfig 使用编译时嵌入的配置，优先于配置文件
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) { o.embeddedConfig = configBytes }
}

// WithAppConfig 直接使用已解析的配置
func WithAppConfig(cfg *types.AppConfig) Option {
	return func(o *options) { o.appConfig = cfg }
}

// WithDataRoot 覆盖账本数据目录
func WithDataRoot(path string) Option {
	return func(o *options) { o.dataRoot = path }
}

// WithInMemoryStorage 账本只保存在内存中，进程退出即丢弃
func WithInMemoryStorage() Option {
	return func(o *options) { o.inMemory = true }
}

// WithoutAPI 只装配账本与合约服务，不启动 HTTP/WebSocket
func WithoutAPI() Option {
	return func(o *options) { o.enableAPI = false }
}

func newOptions(opts ...Option) *options {
	o := &options{enableAPI: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// applyOverrides 把命令行覆盖项写入已加载的配置
func (o *options) applyOverrides(cfg *types.AppConfig) {
	if o.dataRoot == "" && !o.inMemory {
		return
	}
	if cfg.Storage == nil {
		cfg.Storage = &types.UserStorageConfig{}
	}
	if o.dataRoot != "" {
		root := o.dataRoot
		cfg.Storage.DataRoot = &root
	}
	if o.inMemory {
		inMemory := true
		cfg.Storage.InMemory = &inMemory
	}
}

// GetAppConfig 返回加载后的配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
