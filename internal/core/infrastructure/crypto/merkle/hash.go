package merkle

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Keccak256 以太坊使用的 legacy keccak256（非 NIST SHA3）
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// LeafHash 白名单叶子：keccak256(20 字节地址)
func LeafHash(addr common.Address) common.Hash {
	return Keccak256(addr.Bytes())
}

// HashPair 有序对哈希，较小的一方在前，证明因此不需要方向位
func HashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a.Bytes(), b.Bytes()) <= 0 {
		return Keccak256(a.Bytes(), b.Bytes())
	}
	return Keccak256(b.Bytes(), a.Bytes())
}
