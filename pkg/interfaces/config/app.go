package config

import "github.com/weisyn/socialmaker/pkg/types"

// AppOptions 应用配置选项接口
type AppOptions interface {
	// GetAppConfig 获取从配置文件解析出的用户配置
	GetAppConfig() *types.AppConfig
}
