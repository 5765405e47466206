package merkle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/socialmaker/pkg/types"
)

func addrs(n int) []common.Address {
	out := make([]common.Address, n)
	for i := range out {
		out[i] = common.BytesToAddress([]byte{0x5c, byte(i + 1)})
	}
	return out
}

func TestKeccak256_MatchesGoEthereum(t *testing.T) {
	data := []byte("simplon")
	assert.Equal(t, crypto.Keccak256Hash(data), Keccak256(data))
	assert.Equal(t, crypto.Keccak256Hash([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
}

func TestHashPair_Commutative(t *testing.T) {
	a := Keccak256([]byte("a"))
	b := Keccak256([]byte("b"))
	assert.Equal(t, HashPair(a, b), HashPair(b, a))
	assert.NotEqual(t, HashPair(a, a), HashPair(a, b))
}

func TestNewTree_Empty(t *testing.T) {
	_, err := NewTree(nil)
	assert.ErrorIs(t, err, ErrEmptyLeaves)

	_, err = NewAddressTree([]common.Address{})
	assert.ErrorIs(t, err, ErrEmptyLeaves)
}

func TestNewTree_SingleLeaf(t *testing.T) {
	a := addrs(1)[0]
	tree, err := NewAddressTree([]common.Address{a})
	require.NoError(t, err)

	assert.Equal(t, LeafHash(a), tree.Root())
	proof, err := tree.AddressProof(a)
	require.NoError(t, err)
	assert.Empty(t, proof)
	assert.True(t, VerifyAddress(a, proof, tree.Root()))
}

func TestNewTree_TwoLeaves(t *testing.T) {
	list := addrs(2)
	tree, err := NewAddressTree(list)
	require.NoError(t, err)

	assert.Equal(t, HashPair(LeafHash(list[0]), LeafHash(list[1])), tree.Root())
	assert.Equal(t, 1, tree.Depth())
}

func TestNewTree_OddNodePromoted(t *testing.T) {
	list := addrs(3)
	tree, err := NewAddressTree(list)
	require.NoError(t, err)

	l0, l1, l2 := LeafHash(list[0]), LeafHash(list[1]), LeafHash(list[2])
	assert.Equal(t, HashPair(HashPair(l0, l1), l2), tree.Root())

	proof, err := tree.AddressProof(list[2])
	require.NoError(t, err)
	assert.Equal(t, types.Proof{HashPair(l0, l1)}, proof)
}

func TestProof_AllMembersVerify(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8, 13} {
		list := addrs(n)
		tree, err := NewAddressTree(list)
		require.NoError(t, err)

		for _, a := range list {
			proof, err := tree.AddressProof(a)
			require.NoError(t, err)
			assert.True(t, VerifyAddress(a, proof, tree.Root()), "n=%d addr=%s", n, a.Hex())
		}
	}
}

func TestProof_NonMemberRejected(t *testing.T) {
	list := addrs(4)
	tree, err := NewAddressTree(list)
	require.NoError(t, err)

	outsider := common.HexToAddress("0x00000000000000000000000000000000deadbeef")
	_, err = tree.AddressProof(outsider)
	assert.ErrorIs(t, err, ErrLeafNotFound)

	// 借用成员的证明也不能通过
	proof, err := tree.AddressProof(list[0])
	require.NoError(t, err)
	assert.False(t, VerifyAddress(outsider, proof, tree.Root()))
	assert.False(t, VerifyAddress(list[0], proof, common.Hash{}))
}

func TestNewTree_OrderMatters(t *testing.T) {
	list := addrs(3)
	reversed := []common.Address{list[2], list[1], list[0]}

	a, err := NewAddressTree(list)
	require.NoError(t, err)
	b, err := NewAddressTree(reversed)
	require.NoError(t, err)

	assert.NotEqual(t, a.Root(), b.Root())
}

func TestNewTree_DuplicatesKept(t *testing.T) {
	list := addrs(2)
	dup := []common.Address{list[0], list[1], list[0]}

	tree, err := NewAddressTree(dup)
	require.NoError(t, err)
	assert.Len(t, tree.Leaves(), 3)

	proof, err := tree.AddressProof(list[0])
	require.NoError(t, err)
	assert.True(t, VerifyAddress(list[0], proof, tree.Root()))
}

func TestLeaves_ReturnsCopy(t *testing.T) {
	tree, err := NewAddressTree(addrs(2))
	require.NoError(t, err)

	leaves := tree.Leaves()
	leaves[0] = common.Hash{}
	assert.NotEqual(t, common.Hash{}, tree.Leaves()[0])
}
