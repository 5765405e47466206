package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/socialmaker/internal/config/event"
	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	eventimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/event"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/socialmaker/pkg/types"
)

var (
	contractA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	contractB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	alice     = common.HexToAddress("0x000000000000000000000000000000000000a11c")
)

func newTestLedger(t *testing.T) (*Ledger, *eventimpl.EventBus, *prometheus.Registry) {
	t.Helper()
	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := eventimpl.New(eventconfig.New(nil), nil)
	reg := prometheus.NewRegistry()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := New(store, bus, nil, WithMetrics(NewMetrics(reg)), WithClock(func() time.Time { return fixed }))
	return l, bus, reg
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestExecute_CommitsStateAndLogs(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)
	key := StateKey(contractA, "value")

	receipt, err := l.Execute(ctx, "set", func(tx *Tx) error {
		if err := tx.Set(key, []byte("v1")); err != nil {
			return err
		}
		if err := tx.Emit(contractA, "First", []common.Hash{types.AddressTopic(alice)}, nil); err != nil {
			return err
		}
		return tx.Emit(contractA, "Second", nil, map[string]string{"k": "v"})
	})
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 2)
	assert.Equal(t, uint64(1), receipt.Logs[0].Seq)
	assert.Equal(t, uint64(2), receipt.Logs[1].Seq)
	assert.Equal(t, "set", receipt.Call)

	err = l.View(ctx, func(tx *Tx) error {
		v, err := tx.Get(key)
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)
		return nil
	})
	require.NoError(t, err)

	seq, err := l.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestExecute_RevertDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	l, bus, _ := newTestLedger(t)
	key := StateKey(contractA, "value")

	var received []*types.LogEntry
	_, err := bus.SubscribeLogs(types.LogFilter{}, func(e *types.LogEntry) { received = append(received, e) })
	require.NoError(t, err)

	_, err = l.Execute(ctx, "boom", func(tx *Tx) error {
		require.NoError(t, tx.Set(key, []byte("dirty")))
		require.NoError(t, tx.Emit(contractA, "Never", nil, nil))
		return types.ErrOnlyUser
	})
	assert.ErrorIs(t, err, types.ErrOnlyUser)

	err = l.View(ctx, func(tx *Tx) error {
		ok, err := tx.Has(key)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	logs, err := l.Logs(ctx, types.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Empty(t, received)
	assert.Equal(t, 1.0, counterValue(t, l.metrics.calls.WithLabelValues("boom", resultReverted)))

	// 回滚不消耗序号
	receipt, err := l.Execute(ctx, "ok", func(tx *Tx) error {
		return tx.Emit(contractA, "After", nil, nil)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Logs[0].Seq)
}

func TestExecute_InfraErrorWrapped(t *testing.T) {
	l, _, _ := newTestLedger(t)
	sentinel := errors.New("disk")

	_, err := l.Execute(context.Background(), "fail", func(tx *Tx) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
	_, isRevert := types.AsRevert(err)
	assert.False(t, isRevert)
	assert.Equal(t, 1.0, counterValue(t, l.metrics.calls.WithLabelValues("fail", resultFailed)))
}

func TestExecute_PublishesAfterCommit(t *testing.T) {
	ctx := context.Background()
	l, bus, _ := newTestLedger(t)

	var got []*types.LogEntry
	_, err := bus.SubscribeLogs(types.LogFilter{Names: []string{"Hello"}}, func(e *types.LogEntry) {
		got = append(got, e)
	})
	require.NoError(t, err)

	_, err = l.Execute(ctx, "emit", func(tx *Tx) error {
		if err := tx.Emit(contractA, "Hello", nil, nil); err != nil {
			return err
		}
		return tx.Emit(contractA, "Other", nil, nil)
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Hello", got[0].Name)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), got[0].Timestamp)
}

func TestView_RejectsWrites(t *testing.T) {
	l, _, _ := newTestLedger(t)

	err := l.View(context.Background(), func(tx *Tx) error {
		return tx.Set([]byte("k"), []byte("v"))
	})
	assert.ErrorIs(t, err, ErrReadOnlyCall)

	err = l.View(context.Background(), func(tx *Tx) error {
		return tx.Emit(contractA, "X", nil, nil)
	})
	assert.ErrorIs(t, err, ErrReadOnlyCall)
}

func TestExecute_SerializesConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)
	key := StateKey(contractA, "counter")

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Execute(ctx, "inc", func(tx *Tx) error {
				raw, err := tx.Get(key)
				if err != nil {
					return err
				}
				if err := tx.Set(key, encodeUint64(decodeUint64(raw)+1)); err != nil {
					return err
				}
				return tx.Emit(contractA, "Inc", nil, nil)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err := l.View(ctx, func(tx *Tx) error {
		raw, err := tx.Get(key)
		require.NoError(t, err)
		assert.Equal(t, uint64(workers), decodeUint64(raw))
		return nil
	})
	require.NoError(t, err)

	logs, err := l.Logs(ctx, types.LogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, workers)
	for i, e := range logs {
		assert.Equal(t, uint64(i+1), e.Seq)
	}
}

func TestLogs_Filter(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	_, err := l.Execute(ctx, "seed", func(tx *Tx) error {
		emits := []struct {
			contract common.Address
			name     string
			topics   []common.Hash
		}{
			{contractA, "Followed", []common.Hash{types.AddressTopic(alice)}},
			{contractB, "Followed", nil},
			{contractA, "Liked", nil},
			{contractA, "Followed", []common.Hash{types.AddressTopic(alice)}},
		}
		for _, e := range emits {
			if err := tx.Emit(e.contract, e.name, e.topics, nil); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		filter types.LogFilter
		seqs   []uint64
	}{
		{name: "全部", filter: types.LogFilter{}, seqs: []uint64{1, 2, 3, 4}},
		{name: "按合约", filter: types.LogFilter{Contracts: []common.Address{contractB}}, seqs: []uint64{2}},
		{name: "按名称", filter: types.LogFilter{Names: []string{"Liked"}}, seqs: []uint64{3}},
		{name: "按主题", filter: types.LogFilter{Topics: []common.Hash{types.AddressTopic(alice)}}, seqs: []uint64{1, 4}},
		{name: "序号区间", filter: types.LogFilter{FromSeq: 2, ToSeq: 3}, seqs: []uint64{2, 3}},
		{name: "限制条数", filter: types.LogFilter{Names: []string{"Followed"}, Limit: 2}, seqs: []uint64{1, 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs, err := l.Logs(ctx, tc.filter)
			require.NoError(t, err)
			seqs := make([]uint64, 0, len(logs))
			for _, e := range logs {
				seqs = append(seqs, e.Seq)
			}
			assert.Equal(t, tc.seqs, seqs)
		})
	}
}

func TestTx_Helpers(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	hashKey := StateKey(contractA, "hash")
	flagKey := StateKey(contractA, "flag", alice.Bytes())
	h := common.HexToHash("0x01")

	_, err := l.Execute(ctx, "helpers", func(tx *Tx) error {
		n0, err := tx.NextNonce(contractA)
		require.NoError(t, err)
		n1, err := tx.NextNonce(contractA)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), n0)
		assert.Equal(t, uint64(1), n1)

		require.NoError(t, tx.SetHash(hashKey, h))
		require.NoError(t, tx.SetPresent(flagKey, true))
		return nil
	})
	require.NoError(t, err)

	_, err = l.Execute(ctx, "reset", func(tx *Tx) error {
		got, err := tx.GetHash(hashKey)
		require.NoError(t, err)
		assert.Equal(t, h, got)

		require.NoError(t, tx.SetHash(hashKey, common.Hash{}))
		return tx.SetPresent(flagKey, false)
	})
	require.NoError(t, err)

	err = l.View(ctx, func(tx *Tx) error {
		got, err := tx.GetHash(hashKey)
		require.NoError(t, err)
		assert.Equal(t, common.Hash{}, got)
		ok, err := tx.Has(flagKey)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestStateKey_DistinctContracts(t *testing.T) {
	assert.NotEqual(t, StateKey(contractA, "root"), StateKey(contractB, "root"))
	assert.NotEqual(t, StateKey(contractA, "f", []byte("a")), StateKey(contractA, "f"))
}
