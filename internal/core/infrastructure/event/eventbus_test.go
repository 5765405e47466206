package event

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	eventconfig "github.com/weisyn/socialmaker/internal/config/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/types"
)

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	eb := New(eventconfig.New(nil), nil)

	var got []string
	handler := func(msg string) { got = append(got, msg) }
	require.NoError(t, eb.Subscribe("topic", handler))
	assert.True(t, eb.HasCallback("topic"))

	eb.Publish("topic", "a")
	eb.Publish("topic", "b")
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, eb.Unsubscribe("topic", handler))
	eb.Publish("topic", "c")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestEventBus_SubscribeAsync(t *testing.T) {
	eb := New(eventconfig.New(nil), nil)

	var mu sync.Mutex
	count := 0
	require.NoError(t, eb.SubscribeAsync("async", func(n int) {
		mu.Lock()
		count += n
		mu.Unlock()
	}, true))

	for i := 0; i < 10; i++ {
		eb.Publish("async", 1)
	}
	eb.WaitAsync()
	assert.Equal(t, 10, count)
}

func TestEventBus_LogSubscriptionsFilter(t *testing.T) {
	eb := New(eventconfig.New(nil), nil)
	network := common.HexToAddress("0x01")
	messenger := common.HexToAddress("0x02")

	var networkLogs, allLogs []*types.LogEntry
	idNetwork, err := eb.SubscribeLogs(types.LogFilter{Contracts: []common.Address{network}}, func(e *types.LogEntry) {
		networkLogs = append(networkLogs, e)
	})
	require.NoError(t, err)
	idAll, err := eb.SubscribeLogs(types.LogFilter{}, func(e *types.LogEntry) {
		allLogs = append(allLogs, e)
	})
	require.NoError(t, err)
	assert.NotEqual(t, idNetwork, idAll)
	assert.Equal(t, 2, eb.SubscriptionCount())

	eb.Publish(event.TopicLedgerLog, &types.LogEntry{Seq: 1, Contract: network, Name: types.EventArticlePosted})
	eb.Publish(event.TopicLedgerLog, &types.LogEntry{Seq: 2, Contract: messenger, Name: types.EventMessageSended})

	require.Len(t, networkLogs, 1)
	assert.Equal(t, uint64(1), networkLogs[0].Seq)
	assert.Len(t, allLogs, 2)

	require.NoError(t, eb.UnsubscribeLogs(idNetwork))
	assert.Error(t, eb.UnsubscribeLogs(idNetwork))

	eb.Publish(event.TopicLedgerLog, &types.LogEntry{Seq: 3, Contract: network})
	assert.Len(t, networkLogs, 1)
	assert.Len(t, allLogs, 3)

	published, delivered := eb.Stats()
	assert.Equal(t, uint64(3), published)
	assert.Equal(t, uint64(4), delivered)
}

func TestEventBus_Disabled(t *testing.T) {
	disabled := false
	eb := New(eventconfig.New(&types.UserEventConfig{Enabled: &disabled}), nil)

	called := false
	require.NoError(t, eb.Subscribe("topic", func() { called = true }))
	eb.Publish("topic")
	assert.False(t, called)

	_, err := eb.SubscribeLogs(types.LogFilter{}, func(*types.LogEntry) {})
	assert.Error(t, err)

	_, err = New(eventconfig.New(nil), nil).SubscribeLogs(types.LogFilter{}, nil)
	assert.Error(t, err)
}
