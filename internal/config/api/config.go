// Package api 提供 HTTP/WebSocket API 配置
package api

import (
	"fmt"
	"time"

	"github.com/weisyn/socialmaker/pkg/types"
)

// APIOptions API 配置选项
type APIOptions struct {
	Host             string        `json:"host"`
	HTTPPort         int           `json:"http_port"`
	SignatureMaxSkew time.Duration `json:"signature_max_skew"`
	EnableMetrics    bool          `json:"enable_metrics"`
	EnableWebSocket  bool          `json:"enable_websocket"`
	ReadTimeout      time.Duration `json:"read_timeout"`
	WriteTimeout     time.Duration `json:"write_timeout"`
	MaxBodyBytes     int64         `json:"max_body_bytes"`
	ReadRateLimit    int           `json:"read_rate_limit"`
	WriteRateLimit   int           `json:"write_rate_limit"`
}

// Config API 配置实现
type Config struct {
	options *APIOptions
}

// New 创建 API 配置
func New(userConfig interface{}) *Config {
	options := &APIOptions{
		Host:             defaultHost,
		HTTPPort:         defaultHTTPPort,
		SignatureMaxSkew: defaultSignatureMaxSkew,
		EnableMetrics:    defaultEnableMetrics,
		EnableWebSocket:  defaultEnableWebSocket,
		ReadTimeout:      defaultReadTimeout,
		WriteTimeout:     defaultWriteTimeout,
		MaxBodyBytes:     defaultMaxBodyBytes,
		ReadRateLimit:    defaultReadRateLimit,
		WriteRateLimit:   defaultWriteRateLimit,
	}
	applyUserAPIConfig(options, userConfig)
	return &Config{options: options}
}

func applyUserAPIConfig(options *APIOptions, userConfig interface{}) {
	user, ok := userConfig.(*types.UserAPIConfig)
	if !ok || user == nil {
		return
	}
	if user.Host != nil && *user.Host != "" {
		options.Host = *user.Host
	}
	if user.HTTPPort != nil && *user.HTTPPort > 0 {
		options.HTTPPort = *user.HTTPPort
	}
	if user.SignatureMaxSkew != nil {
		if d, err := time.ParseDuration(*user.SignatureMaxSkew); err == nil && d > 0 {
			options.SignatureMaxSkew = d
		}
	}
	if user.EnableMetrics != nil {
		options.EnableMetrics = *user.EnableMetrics
	}
	if user.EnableWebSocket != nil {
		options.EnableWebSocket = *user.EnableWebSocket
	}
	if user.ReadRateLimit != nil && *user.ReadRateLimit >= 0 {
		options.ReadRateLimit = *user.ReadRateLimit
	}
	if user.WriteRateLimit != nil && *user.WriteRateLimit >= 0 {
		options.WriteRateLimit = *user.WriteRateLimit
	}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}

// Addr 监听地址 host:port
func (o *APIOptions) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.HTTPPort)
}
