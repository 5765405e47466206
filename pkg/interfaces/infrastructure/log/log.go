// Package log 定义社交账本节点使用的日志接口
//
// 所有模块只依赖本接口，具体实现位于 internal/core/infrastructure/log（zap + lumberjack）。
// 模块通过 With("module", "ledger") 之类的字段标识来源，由实现负责路由到系统/业务日志文件。
package log

import "go.uber.org/zap"

// Logger 日志记录器接口
type Logger interface {
	// Debug 调试级别
	Debug(msg string)
	// Debugf 格式化调试级别
	Debugf(format string, args ...interface{})

	// Info 信息级别
	Info(msg string)
	// Infof 格式化信息级别
	Infof(format string, args ...interface{})

	// Warn 警告级别
	Warn(msg string)
	// Warnf 格式化警告级别
	Warnf(format string, args ...interface{})

	// Error 错误级别
	Error(msg string)
	// Errorf 格式化错误级别
	Errorf(format string, args ...interface{})

	// Fatal 记录后退出进程
	Fatal(msg string)
	// Fatalf 格式化记录后退出进程
	Fatalf(format string, args ...interface{})

	// With 返回附加了键值对字段的子记录器
	With(args ...interface{}) Logger

	// Sync 刷新缓冲区
	Sync() error

	// GetZapLogger 返回底层 zap 记录器（供 gin 中间件等需要 zap 字段的场景）
	GetZapLogger() *zap.Logger
}
