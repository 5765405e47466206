package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keygenOut string

// keygenCmd 生成 secp256k1 签名密钥
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "生成签名密钥",
	Long: `生成 secp256k1 私钥并输出对应地址。
指定 --out 时私钥以十六进制写入文件（权限 0600），否则只输出地址与私钥，请妥善保管。
私钥只用于本地签名请求，不要发送给任何节点。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.GenerateKey()
		if err != nil {
			return fmt.Errorf("生成密钥失败: %w", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)

		if keygenOut != "" {
			if err := crypto.SaveECDSA(keygenOut, key); err != nil {
				return fmt.Errorf("保存密钥失败: %w", err)
			}
			formatter.PrintSuccess("私钥已写入 " + keygenOut)
			return formatter.Print(map[string]interface{}{"address": addr.Hex(), "key_file": keygenOut})
		}
		return formatter.Print(map[string]interface{}{
			"address":     addr.Hex(),
			"private_key": hexutil.Encode(crypto.FromECDSA(key)),
		})
	},
}

func init() {
	keygenCmd.Flags().StringVar(&keygenOut, "out", "", "私钥输出文件")
}
