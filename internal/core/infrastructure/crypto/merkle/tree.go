// Package merkle 提供有序对 keccak256 默克尔树
//
// 叶子为 keccak256(address)，父节点为 keccak256(sorted(left, right))。
// 某一层节点数为奇数时，最后一个节点直接上移到下一层。
package merkle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/pkg/types"
)

// 错误定义
var (
	ErrEmptyLeaves  = errors.New("叶子列表为空")
	ErrLeafNotFound = errors.New("叶子不在树中")
)

// Tree 默克尔树，layers[0] 为叶子层，最后一层只有根
type Tree struct {
	layers [][]common.Hash
	index  map[common.Hash]int
}

// NewTree 按给定顺序构建默克尔树，不排序不去重；重复叶子的证明取第一次出现的位置
func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyLeaves
	}

	base := make([]common.Hash, len(leaves))
	copy(base, leaves)

	index := make(map[common.Hash]int, len(base))
	for i, leaf := range base {
		if _, seen := index[leaf]; !seen {
			index[leaf] = i
		}
	}

	layers := [][]common.Hash{base}
	for current := base; len(current) > 1; {
		next := make([]common.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 == len(current) {
				next = append(next, current[i])
				continue
			}
			next = append(next, HashPair(current[i], current[i+1]))
		}
		layers = append(layers, next)
		current = next
	}

	return &Tree{layers: layers, index: index}, nil
}

// NewAddressTree 以地址列表构建白名单树
func NewAddressTree(addrs []common.Address) (*Tree, error) {
	leaves := make([]common.Hash, len(addrs))
	for i, addr := range addrs {
		leaves[i] = LeafHash(addr)
	}
	return NewTree(leaves)
}

// Root 根哈希
func (t *Tree) Root() common.Hash {
	top := t.layers[len(t.layers)-1]
	return top[0]
}

// Leaves 叶子副本
func (t *Tree) Leaves() []common.Hash {
	out := make([]common.Hash, len(t.layers[0]))
	copy(out, t.layers[0])
	return out
}

// Depth 层数（不含叶子层）
func (t *Tree) Depth() int {
	return len(t.layers) - 1
}

// Proof 生成叶子的证明：自下而上的兄弟节点，被上移的奇数节点在该层没有兄弟
func (t *Tree) Proof(leaf common.Hash) (types.Proof, error) {
	idx, ok := t.index[leaf]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLeafNotFound, leaf.Hex())
	}

	proof := make(types.Proof, 0, t.Depth())
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := idx ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		idx /= 2
	}
	return proof, nil
}

// AddressProof 生成地址的白名单证明
func (t *Tree) AddressProof(addr common.Address) (types.Proof, error) {
	return t.Proof(LeafHash(addr))
}
