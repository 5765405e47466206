package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weisyn/socialmaker/configs"
	"github.com/weisyn/socialmaker/internal/app"
	"github.com/weisyn/socialmaker/internal/app/version"
)

var nodeFlags struct {
	config   string
	env      string
	dataRoot string
	inMemory bool
}

// nodeCmd 启动节点
var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "启动社交网络节点",
	Long: `启动节点：打开账本存储，装配合约服务，并在配置的端口上提供 HTTP API。

配置来源优先级：--env 对应的内置配置 > 环境变量 SOCIAL_CONFIG_PATH > --config > configs/social.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []app.Option
		switch {
		case nodeFlags.config != "":
			opts = append(opts, app.WithConfigFile(nodeFlags.config))
		case nodeFlags.env != "":
			embedded := configs.Get(nodeFlags.env)
			if embedded == nil {
				return fmt.Errorf("未知环境 %q，可选 dev | prod", nodeFlags.env)
			}
			opts = append(opts, app.WithEmbeddedConfig(embedded))
		}

		if nodeFlags.dataRoot != "" {
			opts = append(opts, app.WithDataRoot(nodeFlags.dataRoot))
		}
		if nodeFlags.inMemory {
			opts = append(opts, app.WithInMemoryStorage())
		}

		formatter.PrintInfo(fmt.Sprintf("socialmaker %s 启动中...", version.GetVersion()))
		node, err := app.Start(opts...)
		if err != nil {
			return err
		}
		formatter.PrintSuccess("节点已启动，按 Ctrl+C 停止")
		node.Wait()
		return nil
	},
}

// versionCmd 版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

func init() {
	nodeCmd.Flags().StringVarP(&nodeFlags.config, "config", "c", "", "配置文件路径")
	nodeCmd.Flags().StringVar(&nodeFlags.env, "env", "", "使用内置配置: dev | prod")
	nodeCmd.Flags().StringVar(&nodeFlags.dataRoot, "data-root", "", "覆盖数据目录")
	nodeCmd.Flags().BoolVar(&nodeFlags.inMemory, "in-memory", false, "账本只保存在内存中")
}
