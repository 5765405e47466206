// Package content 在 IPFS CID 与 32 字节内容指针之间转换
//
// 链上只保存 sha2-256 摘要本身；CIDv0 的前两个字节（0x12 0x20，
// 即 multihash 的算法码与长度）在写入前去掉，读取时补回。
package content

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"
)

// 错误定义
var (
	ErrUnsupportedHash  = errors.New("仅支持 sha2-256 摘要的 CID")
	ErrUnsupportedCodec = errors.New("仅支持 dag-pb 编码的 CID")
	ErrEmptyPointer    = errors.New("内容指针为空")
)

// multihashPrefix sha2-256 / 32 字节
var multihashPrefix = []byte{byte(mh.SHA2_256), 32}

// FromCID 解析 CIDv0 或 CIDv1（dag-pb + sha2-256），返回摘要作为内容指针
// 指针只保留摘要，读取时按 CIDv0 还原，其他编码无法无损往返
func FromCID(s string) (common.Hash, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("解析 CID 失败: %w", err)
	}
	if codec := c.Prefix().Codec; codec != cid.DagProtobuf {
		return common.Hash{}, fmt.Errorf("%w: codec=0x%x", ErrUnsupportedCodec, codec)
	}
	decoded, err := mh.Decode(c.Hash())
	if err != nil {
		return common.Hash{}, fmt.Errorf("解析 multihash 失败: %w", err)
	}
	if decoded.Code != mh.SHA2_256 || decoded.Length != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrUnsupportedHash, mh.Codes[decoded.Code])
	}
	return common.BytesToHash(decoded.Digest), nil
}

// ToCIDv0 补回 multihash 前缀并 base58 编码
func ToCIDv0(h common.Hash) string {
	buf := make([]byte, 0, len(multihashPrefix)+common.HashLength)
	buf = append(buf, multihashPrefix...)
	buf = append(buf, h.Bytes()...)
	return base58.Encode(buf)
}

// ToCID 同 ToCIDv0，零指针返回 ErrEmptyPointer
func ToCID(h common.Hash) (string, error) {
	if h == (common.Hash{}) {
		return "", ErrEmptyPointer
	}
	return ToCIDv0(h), nil
}

// SumCIDv0 计算数据的 CIDv0（raw sha2-256，不做 UnixFS 分块）
func SumCIDv0(data []byte) (string, error) {
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("计算 multihash 失败: %w", err)
	}
	return cid.NewCidV0(sum).String(), nil
}

// Parse 接受 CID 字符串或 0x 前缀的 32 字节十六进制指针
func Parse(s string) (common.Hash, error) {
	if len(s) == 2+2*common.HashLength && (s[:2] == "0x" || s[:2] == "0X") {
		b, err := decodeHex(s[2:])
		if err != nil {
			return common.Hash{}, err
		}
		return common.BytesToHash(b), nil
	}
	return FromCID(s)
}

func decodeHex(s string) ([]byte, error) {
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return nil, fmt.Errorf("无效的十六进制内容指针: %s", s)
	}
	return b, nil
}
