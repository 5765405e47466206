// Package ledger 提供账本配置
package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/pkg/types"
)

// LedgerOptions 账本配置选项
type LedgerOptions struct {
	RegistryAddress common.Address `json:"registry_address"`
}

// Config 账本配置实现
type Config struct {
	options *LedgerOptions
}

// New 创建账本配置，非法地址回退为默认值
func New(userConfig interface{}) *Config {
	options := &LedgerOptions{
		RegistryAddress: common.HexToAddress(defaultRegistryAddress),
	}
	if user, ok := userConfig.(*types.UserLedgerConfig); ok && user != nil && user.RegistryAddress != nil {
		if common.IsHexAddress(*user.RegistryAddress) {
			options.RegistryAddress = common.HexToAddress(*user.RegistryAddress)
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整选项
func (c *Config) GetOptions() *LedgerOptions {
	return c.options
}
