package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	// defaultLogLevel 默认日志级别
	defaultLogLevel = "info"

	// defaultToConsole 默认输出到控制台
	defaultToConsole = true

	// defaultFilePath 默认日志文件路径，位于数据根目录下
	defaultFilePath = "./data/logs/social.log"

	// === 轮转 ===
	defaultMaxSize    = 100 // MB
	defaultMaxBackups = 10
	defaultMaxAge     = 30 // 天
	defaultCompress   = true

	// === 调试 ===
	defaultEnableCaller     = true
	defaultEnableStacktrace = true

	// === 多文件 ===

	// defaultEnableMultiFile 系统日志（ledger/storage/event）与业务日志（social/api/ipfs）分离
	defaultEnableMultiFile = true

	defaultSystemLogFile   = "social-system.log"
	defaultBusinessLogFile = "social-business.log"
)

// defaultLevelMap 日志级别映射
var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
