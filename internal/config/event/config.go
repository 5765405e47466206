// Package event 提供事件总线配置
package event

import "github.com/weisyn/socialmaker/pkg/types"

// EventOptions 事件总线配置选项
type EventOptions struct {
	Enabled    bool `json:"enabled"`     // 是否把账本事件发布到事件总线
	BufferSize int  `json:"buffer_size"` // 订阅推送缓冲区大小
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置，userConfig 支持 *types.UserEventConfig 或 *EventOptions
func New(userConfig interface{}) *Config {
	if opts, ok := userConfig.(*EventOptions); ok && opts != nil {
		return &Config{options: opts}
	}
	options := &EventOptions{
		Enabled:    defaultEnabled,
		BufferSize: defaultBufferSize,
	}
	if ev, ok := userConfig.(*types.UserEventConfig); ok && ev != nil {
		if ev.Enabled != nil {
			options.Enabled = *ev.Enabled
		}
		if ev.BufferSize != nil && *ev.BufferSize > 0 {
			options.BufferSize = *ev.BufferSize
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetBufferSize 缓冲区大小
func (c *Config) GetBufferSize() int {
	return c.options.BufferSize
}
