package merkle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/pkg/types"
)

// ProcessProof 从叶子开始依次与兄弟节点做有序对哈希，返回计算出的根
func ProcessProof(leaf common.Hash, proof types.Proof) common.Hash {
	computed := leaf
	for _, sibling := range proof {
		computed = HashPair(computed, sibling)
	}
	return computed
}

// Verify 校验叶子是否属于以 root 为根的树
func Verify(proof types.Proof, root, leaf common.Hash) bool {
	return ProcessProof(leaf, proof) == root
}

// VerifyAddress 校验地址是否在白名单中
func VerifyAddress(addr common.Address, proof types.Proof, root common.Hash) bool {
	return Verify(proof, root, LeafHash(addr))
}
