// Package ipfs 提供 IPFS 固定服务与网关配置
package ipfs

import (
	"os"
	"time"

	"github.com/weisyn/socialmaker/pkg/types"
)

// EnvJWT 未在配置文件中设置令牌时读取的环境变量
const EnvJWT = "SOCIAL_PINATA_JWT"

// IPFSOptions IPFS 配置选项
type IPFSOptions struct {
	PinningURL   string        `json:"pinning_url"`
	JWT          string        `json:"-"`
	GatewayURL   string        `json:"gateway_url"`
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
	RetryBackoff time.Duration `json:"retry_backoff"`
}

// Config IPFS 配置实现
type Config struct {
	options *IPFSOptions
}

// New 创建 IPFS 配置
func New(userConfig interface{}) *Config {
	options := &IPFSOptions{
		PinningURL:   defaultPinningURL,
		JWT:          os.Getenv(EnvJWT),
		GatewayURL:   defaultGatewayURL,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		RetryBackoff: defaultRetryBackoff,
	}
	if user, ok := userConfig.(*types.UserIPFSConfig); ok && user != nil {
		if user.PinningURL != nil && *user.PinningURL != "" {
			options.PinningURL = *user.PinningURL
		}
		if user.JWT != nil && *user.JWT != "" {
			options.JWT = *user.JWT
		}
		if user.GatewayURL != nil && *user.GatewayURL != "" {
			options.GatewayURL = *user.GatewayURL
		}
		if user.Timeout != nil {
			if d, err := time.ParseDuration(*user.Timeout); err == nil && d > 0 {
				options.Timeout = d
			}
		}
		if user.MaxRetries != nil && *user.MaxRetries >= 0 {
			options.MaxRetries = *user.MaxRetries
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *IPFSOptions {
	return c.options
}
