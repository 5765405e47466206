package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weisyn/socialmaker/pkg/types"
)

// EnvConfigPath 配置文件路径环境变量，优先级高于命令行参数
const EnvConfigPath = "SOCIAL_CONFIG_PATH"

// defaultConfigPath 未指定配置时的默认路径
const defaultConfigPath = "configs/social.json"

// resolveConfig 按 显式配置 > 嵌入配置 > 环境变量路径 > 选项路径 > 默认路径 的顺序加载配置
// 默认路径不存在时使用全默认配置；显式指定的文件不存在或解析失败时报错
func resolveConfig(o *options) (*types.AppConfig, error) {
	if o.appConfig != nil {
		return o.appConfig, nil
	}
	if len(o.embeddedConfig) > 0 {
		return parseConfig(o.embeddedConfig, "embedded")
	}

	path, explicit := configFilePath(o)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			fmt.Printf("配置文件 %s 不存在，使用默认配置\n", path)
			return &types.AppConfig{}, nil
		}
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	cfg, err := parseConfig(data, path)
	if err != nil {
		return nil, err
	}
	fmt.Printf("已加载配置文件: %s\n", path)
	return cfg, nil
}

func configFilePath(o *options) (string, bool) {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return envPath, true
	}
	if o.configFilePath != "" {
		return o.configFilePath, true
	}
	return defaultConfigPath, false
}

func parseConfig(data []byte, source string) (*types.AppConfig, error) {
	var cfg types.AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置 %s 失败: %w", source, err)
	}
	return &cfg, nil
}

// createDataDirectories 根据配置创建数据目录与日志目录
func createDataDirectories(cfg *types.AppConfig) error {
	var directories []string
	if cfg.Storage != nil && cfg.Storage.DataRoot != nil && (cfg.Storage.InMemory == nil || !*cfg.Storage.InMemory) {
		directories = append(directories, *cfg.Storage.DataRoot)
	}
	if cfg.Log != nil && cfg.Log.FilePath != nil && *cfg.Log.FilePath != "" {
		directories = append(directories, filepath.Dir(*cfg.Log.FilePath))
	}

	for _, dir := range directories {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}
