package access

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/pkg/types"
)

var (
	instance = common.HexToAddress("0x00000000000000000000000000000000000acc01")
	owner    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	member   = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return ledger.New(store, nil, nil)
}

func TestJoinSplitAddresses(t *testing.T) {
	addrs := []common.Address{owner, member}
	assert.Equal(t, addrs, SplitAddresses(JoinAddresses(addrs)))
	assert.Empty(t, JoinAddresses(nil))
	assert.Nil(t, SplitAddresses(""))
}

func TestInit_DefaultsAndGate(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	tree, err := merkle.NewAddressTree([]common.Address{owner, member})
	require.NoError(t, err)

	_, err = l.Execute(ctx, "init", func(tx *ledger.Tx) error {
		return Init(tx, instance, owner, tree.Root())
	})
	require.NoError(t, err)

	proof, err := tree.AddressProof(member)
	require.NoError(t, err)

	err = l.View(ctx, func(tx *ledger.Tx) error {
		gotOwner, err := Owner(tx, instance)
		require.NoError(t, err)
		gotAdmin, err := Admin(tx, instance)
		require.NoError(t, err)
		assert.Equal(t, owner, gotOwner)
		assert.Equal(t, owner, gotAdmin)

		for _, id := range types.AllServices() {
			ok, err := IsServiceActive(tx, instance, id)
			require.NoError(t, err)
			assert.True(t, ok)
		}

		assert.NoError(t, Gate(tx, instance, member, proof, types.ServiceNetwork))
		assert.ErrorIs(t, Gate(tx, instance, common.Address{9}, proof, types.ServiceNetwork), types.ErrOnlyUser)
		assert.ErrorIs(t, RequireOwner(tx, instance, member), types.ErrOwnableUnauthorizedAccount)
		return nil
	})
	require.NoError(t, err)
}

func TestToggleService_EmitsPerFlag(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	_, err := l.Execute(ctx, "init", func(tx *ledger.Tx) error {
		return Init(tx, instance, owner, common.Hash{})
	})
	require.NoError(t, err)

	receipt, err := l.Execute(ctx, "toggle", func(tx *ledger.Tx) error {
		return ToggleService(tx, instance, owner, types.ServiceNetwork)
	})
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, types.EventServiceToggled, receipt.Logs[0].Name)
	assert.Equal(t, "0", receipt.Logs[0].Data["service"])
	assert.Equal(t, "false", receipt.Logs[0].Data["active"])
}
