package main

import (
	"github.com/spf13/cobra"
	"github.com/weisyn/socialmaker/internal/core/social/content"
)

// cidCmd CID 与上链指针互转
var cidCmd = &cobra.Command{
	Use:   "cid",
	Short: "CID 与上链十六进制指针互转",
	Long:  "上链只保存 CIDv0 的 32 字节 sha2-256 摘要；CIDv1 只接受 dag-pb + sha2-256。",
}

var cidEncodeCmd = &cobra.Command{
	Use:   "encode <cid>",
	Short: "CID 转十六进制指针",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := content.FromCID(args[0])
		if err != nil {
			return err
		}
		return formatter.Print(map[string]interface{}{"cid": args[0], "hex": h.Hex()})
	},
}

var cidDecodeCmd = &cobra.Command{
	Use:   "decode <hex|cid>",
	Short: "十六进制指针转 CID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := content.Parse(args[0])
		if err != nil {
			return err
		}
		v1, err := content.ToCID(h)
		if err != nil {
			return err
		}
		return formatter.Print(map[string]interface{}{
			"hex":   h.Hex(),
			"cid":   content.ToCIDv0(h),
			"cidv1": v1,
		})
	},
}

func init() {
	cidCmd.AddCommand(cidEncodeCmd, cidDecodeCmd)
}
