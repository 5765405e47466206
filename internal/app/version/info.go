// Package version provides version information for the application.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// 构建时注入的变量，通过ldflags设置
var (
	// 语义化版本信息
	Version = "v0.1.0"

	// 构建信息
	BuildTime   = "unknown"     // 构建时间戳（RFC3339格式）
	BuildCommit = "unknown"     // 构建提交
	BuildEnv    = "development" // 构建环境：development, testing, production

	// Go构建信息
	GoVersion = runtime.Version()
	GoArch    = runtime.GOARCH
	GoOS      = runtime.GOOS
)

// BuildInfo 完整构建信息结构
type BuildInfo struct {
	Version     string `json:"version"`
	BuildTime   string `json:"build_time"`
	BuildCommit string `json:"build_commit"`
	BuildEnv    string `json:"build_env"`
	GoVersion   string `json:"go_version"`
	GoArch      string `json:"go_arch"`
	GoOS        string `json:"go_os"`
}

// GetVersion 获取版本号
func GetVersion() string {
	return Version
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:     Version,
		BuildTime:   BuildTime,
		BuildCommit: BuildCommit,
		BuildEnv:    BuildEnv,
		GoVersion:   GoVersion,
		GoArch:      GoArch,
		GoOS:        GoOS,
	}
}

// GetFullVersion 获取完整版本信息（用于 version 命令输出）
func GetFullVersion() string {
	info := GetBuildInfo()

	versionStr := fmt.Sprintf("socialmaker %s", info.Version)
	if info.BuildCommit != "unknown" {
		versionStr += fmt.Sprintf(" (%s)", info.BuildCommit)
	}

	if info.BuildTime != "unknown" {
		if parsedTime, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			versionStr += fmt.Sprintf("\n构建时间: %s", parsedTime.Format("2006-01-02 15:04:05 MST"))
		} else {
			versionStr += fmt.Sprintf("\n构建时间: %s", info.BuildTime)
		}
	}

	versionStr += fmt.Sprintf("\n构建环境: %s", info.BuildEnv)
	versionStr += fmt.Sprintf("\nGo版本: %s", info.GoVersion)
	versionStr += fmt.Sprintf("\n平台: %s/%s", info.GoOS, info.GoArch)

	return versionStr
}

// IsProductionBuild 判断是否为生产构建
func IsProductionBuild() bool { return BuildEnv == "production" }
