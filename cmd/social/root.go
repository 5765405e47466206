package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/weisyn/socialmaker/client/output"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	OutputFormat string // 输出格式
	Silent       bool   // 静默模式
}

var (
	globalFlags GlobalFlags
	formatter   *output.Formatter
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "social",
	Short: "去中心化社交网络节点与命令行工具",
	Long: `social - 去中心化社交网络生成器

  social node             启动节点（合约账本 + HTTP API）
  social call ...         通过 HTTP API 调用节点（本地签名）
  social merkle ...       成员白名单 Merkle 根与证明
  social cid ...          CID 与上链十六进制指针互转
  social keygen           生成签名密钥`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		formatter = output.NewFormatter(output.Format(globalFlags.OutputFormat), os.Stdout)
		formatter.SetSilent(globalFlags.Silent)
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if formatter != nil {
			formatter.PrintError(err)
		} else {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "json", "输出格式: json|pretty|table")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Silent, "silent", false, "静默模式 (仅输出错误)")

	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(merkleCmd)
	rootCmd.AddCommand(cidCmd)
	rootCmd.AddCommand(callCmd)
}
