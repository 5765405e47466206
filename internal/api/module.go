// Package api 组装对外接口模块
package api

import (
	"github.com/weisyn/socialmaker/internal/api/http"
	"go.uber.org/fx"
)

// Module 返回API模块选项
// HTTP 服务器同时承载 /api/v1、/ws/logs 与 /metrics
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		fx.Invoke(func(*http.Server) {}),
	)
}
