package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/socialmaker/pkg/types"
)

var merkleFlags struct {
	file    string
	address string
	root    string
	proof   []string
}

// merkleCmd 成员白名单工具
var merkleCmd = &cobra.Command{
	Use:   "merkle",
	Short: "成员白名单 Merkle 根与证明",
	Long: `按节点的规则计算成员白名单：叶子为 keccak256(地址)，相邻节点排序后哈希，奇数节点直接上提。
地址可作为参数给出，或用 --file 从文件逐行读取（# 开头为注释）。`,
}

var merkleRootCmd = &cobra.Command{
	Use:   "root [address...]",
	Short: "计算白名单根",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, addrs, err := buildTree(args)
		if err != nil {
			return err
		}
		return formatter.Print(map[string]interface{}{
			"root":    tree.Root().Hex(),
			"members": len(addrs),
			"depth":   tree.Depth(),
		})
	},
}

var merkleProofCmd = &cobra.Command{
	Use:   "proof --address <addr> [address...]",
	Short: "生成成员证明",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(merkleFlags.address) {
			return fmt.Errorf("无效地址: %q", merkleFlags.address)
		}
		tree, _, err := buildTree(args)
		if err != nil {
			return err
		}
		proof, err := tree.AddressProof(common.HexToAddress(merkleFlags.address))
		if err != nil {
			return err
		}
		hexes := make([]string, len(proof))
		for i, h := range proof {
			hexes[i] = h.Hex()
		}
		return formatter.Print(map[string]interface{}{
			"address": common.HexToAddress(merkleFlags.address).Hex(),
			"root":    tree.Root().Hex(),
			"proof":   hexes,
		})
	},
}

var merkleVerifyCmd = &cobra.Command{
	Use:   "verify --root <hash> --address <addr> --proof <hash,...>",
	Short: "校验成员证明",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(merkleFlags.address) {
			return fmt.Errorf("无效地址: %q", merkleFlags.address)
		}
		root, err := parseHash32(merkleFlags.root)
		if err != nil {
			return err
		}
		proof := make(types.Proof, 0, len(merkleFlags.proof))
		for _, s := range merkleFlags.proof {
			h, err := parseHash32(s)
			if err != nil {
				return err
			}
			proof = append(proof, h)
		}
		valid := merkle.VerifyAddress(common.HexToAddress(merkleFlags.address), proof, root)
		return formatter.Print(map[string]interface{}{"valid": valid})
	},
}

func buildTree(args []string) (*merkle.Tree, []common.Address, error) {
	lines := append([]string(nil), args...)
	if merkleFlags.file != "" {
		fromFile, err := readLines(merkleFlags.file)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, fromFile...)
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("至少需要一个地址")
	}

	addrs := make([]common.Address, 0, len(lines))
	for _, s := range lines {
		if !common.IsHexAddress(s) {
			return nil, nil, fmt.Errorf("无效地址: %q", s)
		}
		addrs = append(addrs, common.HexToAddress(s))
	}
	tree, err := merkle.NewAddressTree(addrs)
	return tree, addrs, err
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

func parseHash32(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	raw := strings.TrimPrefix(s, "0x")
	if len(raw) != 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("无效的 32 字节哈希: %q", s)
	}
	return common.HexToHash(raw), nil
}

func init() {
	merkleCmd.PersistentFlags().StringVarP(&merkleFlags.file, "file", "f", "", "地址列表文件（每行一个）")
	merkleProofCmd.Flags().StringVar(&merkleFlags.address, "address", "", "要证明的地址")
	merkleVerifyCmd.Flags().StringVar(&merkleFlags.address, "address", "", "成员地址")
	merkleVerifyCmd.Flags().StringVar(&merkleFlags.root, "root", "", "白名单根")
	merkleVerifyCmd.Flags().StringSliceVar(&merkleFlags.proof, "proof", nil, "证明（逗号分隔）")

	merkleCmd.AddCommand(merkleRootCmd, merkleProofCmd, merkleVerifyCmd)
}
