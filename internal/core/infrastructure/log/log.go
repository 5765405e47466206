// Package log 提供基于 zap 的日志实现
// 支持控制台输出、lumberjack 文件轮转以及按 module 字段拆分系统/业务日志
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logconfig "github.com/weisyn/socialmaker/internal/config/log"
	logInterface "github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 模块名称，作为 module 字段取值
const (
	ModuleLedger  = "ledger"
	ModuleStorage = "storage"
	ModuleEvent   = "event"
	ModuleSocial  = "social"
	ModuleAPI     = "api"
	ModuleIPFS    = "ipfs"
	ModuleApp     = "app"
)

var (
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger 实现 logInterface.Logger
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

func init() {
	SetLogger(newConsoleLogger())
}

// newConsoleLogger 启动阶段使用的控制台记录器，配置加载后由 ProvideServices 替换
func newConsoleLogger() logInterface.Logger {
	opts := logconfig.New(nil).GetOptions()
	copied := *opts
	copied.FilePath = "stderr"
	l, err := New(logconfig.New(&copied))
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化默认日志记录器失败: %v\n", err)
		return nil
	}
	return l
}

// moduleRoutingCore 根据 module 字段写入 system 或 business 文件
type moduleRoutingCore struct {
	systemCore   zapcore.Core
	businessCore zapcore.Core
}

func (c *moduleRoutingCore) Enabled(level zapcore.Level) bool {
	return c.systemCore.Enabled(level) || c.businessCore.Enabled(level)
}

func (c *moduleRoutingCore) With(fields []zapcore.Field) zapcore.Core {
	// With 附加的 module 字段在 Write 阶段看不到，这里提前路由
	if module := moduleOf(fields); module != "" {
		switch {
		case isSystemModule(module):
			return c.systemCore.With(fields)
		case isBusinessModule(module):
			return c.businessCore.With(fields)
		}
	}
	return &moduleRoutingCore{
		systemCore:   c.systemCore.With(fields),
		businessCore: c.businessCore.With(fields),
	}
}

func (c *moduleRoutingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *moduleRoutingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	module := moduleOf(fields)
	switch {
	case isSystemModule(module):
		return c.systemCore.Write(entry, fields)
	case isBusinessModule(module):
		return c.businessCore.Write(entry, fields)
	}

	// 未标注模块时两个文件都写
	var errs []error
	if err := c.systemCore.Write(entry, fields); err != nil {
		errs = append(errs, err)
	}
	if err := c.businessCore.Write(entry, fields); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("写入日志失败: %v", errs)
	}
	return nil
}

func (c *moduleRoutingCore) Sync() error {
	var errs []error
	if err := c.systemCore.Sync(); err != nil {
		errs = append(errs, err)
	}
	if err := c.businessCore.Sync(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("同步日志文件失败: %v", errs)
	}
	return nil
}

// moduleOf 取出 module 字段
func moduleOf(fields []zapcore.Field) string {
	for _, field := range fields {
		if field.Key != "module" {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.StringerType:
			if s, ok := field.Interface.(fmt.Stringer); ok && s != nil {
				return s.String()
			}
		default:
			if str, ok := field.Interface.(string); ok {
				return str
			}
		}
	}
	return ""
}

// isSystemModule 基础设施类模块
func isSystemModule(module string) bool {
	switch module {
	case ModuleLedger, ModuleStorage, ModuleEvent, "system":
		return true
	}
	return false
}

// isBusinessModule 业务类模块
func isBusinessModule(module string) bool {
	switch module {
	case ModuleSocial, ModuleAPI, ModuleIPFS, ModuleApp:
		return true
	}
	return false
}

// createFileWriter 创建带轮转的文件写入器
func createFileWriter(logPath string, config *logconfig.Config) zapcore.WriteSyncer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", logDir, err)
		return zapcore.AddSync(os.Stderr)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(),
		MaxBackups: config.GetMaxBackups(),
		MaxAge:     config.GetMaxAge(),
		Compress:   config.IsCompressionEnabled(),
	})
}

// New 根据配置创建日志记录器
func New(config *logconfig.Config) (logInterface.Logger, error) {
	level := zap.NewAtomicLevelAt(config.GetZapLevel())
	var cores []zapcore.Core

	outputPath := config.GetFilePath()
	if !config.IsFileOutput() || config.IsConsoleEnabled() {
		output := zapcore.AddSync(os.Stdout)
		if outputPath == "stderr" {
			output = zapcore.AddSync(os.Stderr)
		}
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), output, level))
	}

	if config.IsFileOutput() {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		fileEncoder := config.CreateFileEncoder()

		if config.IsMultiFileEnabled() {
			logDir := filepath.Dir(absPath)
			systemWriter := createFileWriter(filepath.Join(logDir, config.GetSystemLogFile()), config)
			businessWriter := createFileWriter(filepath.Join(logDir, config.GetBusinessLogFile()), config)
			cores = append(cores, &moduleRoutingCore{
				systemCore:   zapcore.NewCore(fileEncoder, systemWriter, level),
				businessCore: zapcore.NewCore(fileEncoder, businessWriter, level),
			})
		} else {
			cores = append(cores, zapcore.NewCore(fileEncoder, createFileWriter(absPath, config), level))
		}
	}

	var zapOptions []zap.Option
	if config.IsCallerEnabled() {
		// 跳过本文件的封装层
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if config.IsStacktraceEnabled() {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zapOptions...)
	return &Logger{
		zapLogger: zapLogger,
		sugar:     zapLogger.Sugar(),
	}, nil
}

// NewFromZap 包装已有的 zap 记录器（测试中常用 zaptest / zap.NewNop）
func NewFromZap(z *zap.Logger) logInterface.Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

// SetLogger 设置全局日志记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 获取全局日志记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Infof 全局信息日志
func Infof(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Infof(format, args...)
	}
}

// Warnf 全局警告日志
func Warnf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

// Errorf 全局错误日志
func Errorf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Errorf(format, args...)
	}
}

// toZapFields 把 key1, value1, key2, value2 ... 转为 zap 字段，奇数个参数时丢弃最后一个
func toZapFields(args ...interface{}) []zap.Field {
	if len(args)%2 != 0 {
		args = args[:len(args)-1]
	}
	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

func (l *Logger) Debug(msg string)                          { l.sugar.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.sugar.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.sugar.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.sugar.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                          { l.sugar.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 返回带额外字段的记录器
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	z := l.zapLogger.With(toZapFields(args...)...)
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

// Sync 刷新缓冲区
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// GetZapLogger 获取底层 zap 记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}
