package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wstypes "github.com/weisyn/socialmaker/internal/api/websocket/types"
	eventconfig "github.com/weisyn/socialmaker/internal/config/event"
	eventimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/types"
)

var network = common.HexToAddress("0x00000000000000000000000000000000000000a1")

// fakeLogs 内存中的历史日志
type fakeLogs struct {
	entries []*types.LogEntry
}

func (f *fakeLogs) Logs(_ context.Context, filter types.LogFilter) ([]*types.LogEntry, error) {
	var out []*types.LogEntry
	for _, e := range f.entries {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func entry(seq uint64, name string) *types.LogEntry {
	return &types.LogEntry{Seq: seq, Contract: network, Name: name}
}

func newTestServer(t *testing.T, logs LogReader) (*eventimpl.EventBus, *Server, string) {
	gin.SetMode(gin.TestMode)
	bus := eventimpl.New(eventconfig.New(nil), nil)
	srv := NewServer(nil, bus, logs, 16)

	router := gin.New()
	srv.RegisterRoutes(router)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return bus, srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/logs"
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func readNotification(t *testing.T, conn *websocket.Conn) wstypes.Notification {
	var n wstypes.Notification
	readJSON(t, conn, &n)
	require.Equal(t, wstypes.MethodSubscription, n.Method)
	return n
}

func TestServer_ReplayThenLive(t *testing.T) {
	logs := &fakeLogs{entries: []*types.LogEntry{
		entry(1, types.EventCreate),
		entry(2, types.EventFollowed),
		entry(3, types.EventLiked),
	}}
	bus, _, url := newTestServer(t, logs)

	conn := dial(t, url+"?from_seq=2")

	var resp wstypes.Response
	readJSON(t, conn, &resp)
	subID, ok := resp.Result.(string)
	require.True(t, ok)
	require.NotEmpty(t, subID)

	first := readNotification(t, conn)
	second := readNotification(t, conn)
	assert.Equal(t, uint64(2), first.Params.Result.Seq)
	assert.Equal(t, uint64(3), second.Params.Result.Seq)
	assert.True(t, first.Params.Replayed)
	assert.Equal(t, subID, first.Params.Subscription)

	// 已回放的序号不重复推送
	bus.Publish(event.TopicLedgerLog, entry(3, types.EventLiked))
	bus.Publish(event.TopicLedgerLog, entry(4, types.EventPinned))

	live := readNotification(t, conn)
	assert.Equal(t, uint64(4), live.Params.Result.Seq)
	assert.False(t, live.Params.Replayed)
}

func TestServer_SubscribeMessageWithFilter(t *testing.T) {
	bus, srv, url := newTestServer(t, &fakeLogs{})
	conn := dial(t, url)

	req := wstypes.Request{JSONRPC: "2.0", ID: 1, Method: wstypes.MethodSubscribe}
	req.Params, _ = json.Marshal(wstypes.SubscribeParams{Filter: types.LogFilter{Names: []string{types.EventPinned}}})
	require.NoError(t, conn.WriteJSON(req))

	var resp wstypes.Response
	readJSON(t, conn, &resp)
	subID, _ := resp.Result.(string)
	require.NotEmpty(t, subID)
	assert.Equal(t, 1, srv.SubscriptionCount())

	bus.Publish(event.TopicLedgerLog, entry(1, types.EventLiked))
	bus.Publish(event.TopicLedgerLog, entry(2, types.EventPinned))

	n := readNotification(t, conn)
	assert.Equal(t, types.EventPinned, n.Params.Result.Name)

	unsub := wstypes.Request{JSONRPC: "2.0", ID: 2, Method: wstypes.MethodUnsubscribe}
	unsub.Params, _ = json.Marshal([]string{subID})
	require.NoError(t, conn.WriteJSON(unsub))

	var unsubResp wstypes.Response
	readJSON(t, conn, &unsubResp)
	assert.Equal(t, true, unsubResp.Result)
	assert.Equal(t, 0, srv.SubscriptionCount())
	assert.Equal(t, 0, bus.SubscriptionCount())
}

func TestServer_UnknownMethod(t *testing.T) {
	_, _, url := newTestServer(t, &fakeLogs{})
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(wstypes.Request{JSONRPC: "2.0", ID: 7, Method: "eth_subscribe"}))

	var resp wstypes.Response
	readJSON(t, conn, &resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, wstypes.CodeMethodNotFound, resp.Error.Code)
}

func TestSubscriptionManager_SlowConsumer(t *testing.T) {
	bus := eventimpl.New(eventconfig.New(nil), nil)
	m := NewSubscriptionManager(nil, bus, nil, 1)

	sub, err := m.Subscribe(context.Background(), "conn", types.LogFilter{})
	require.NoError(t, err)

	// 未启动推送前缓冲区只能容纳一条
	bus.Publish(event.TopicLedgerLog, entry(1, types.EventLiked))
	bus.Publish(event.TopicLedgerLog, entry(2, types.EventLiked))

	m.Start(sub, func(string, *types.LogEntry, bool) error { return nil })
	assert.ErrorIs(t, sub.Err(), ErrSlowConsumer)
	assert.Equal(t, 0, m.Count())
}
