// Package configs 内置的节点配置
package configs

import _ "embed"

//go:embed development.json
var developmentConfig []byte

//go:embed production.json
var productionConfig []byte

// GetDevelopmentConfig 开发环境配置：本机监听、内存文档缓存、不限流
func GetDevelopmentConfig() []byte {
	return developmentConfig
}

// GetProductionConfig 生产环境配置：Redis 文档缓存、开启限流
func GetProductionConfig() []byte {
	return productionConfig
}

// Get 按环境名取内置配置，未知环境返回 nil
func Get(env string) []byte {
	switch env {
	case "dev", "development":
		return developmentConfig
	case "prod", "production":
		return productionConfig
	}
	return nil
}
