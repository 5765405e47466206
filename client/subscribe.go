package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	wstypes "github.com/weisyn/socialmaker/internal/api/websocket/types"
	"github.com/weisyn/socialmaker/pkg/types"
)

// Subscription 日志订阅
// 先收到 FromSeq 之后的历史日志，再收到实时日志；连接断开后 Logs 通道关闭，Err 给出原因
type Subscription struct {
	ID string

	conn      *websocket.Conn
	logs      chan *types.LogEntry
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

// Logs 日志通道
func (s *Subscription) Logs() <-chan *types.LogEntry {
	return s.logs
}

// Err 订阅结束原因，正常关闭时为 nil
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close 关闭订阅连接
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}

// SubscribeLogs 订阅匹配 filter 的日志
func (c *Client) SubscribeLogs(ctx context.Context, filter types.LogFilter) (*Subscription, error) {
	endpoint := c.baseURL + "/ws/logs"
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	if resp != nil && resp.Body != nil {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close WebSocket response body: %v", err)
		}
	}

	params, err := json.Marshal(wstypes.SubscribeParams{Filter: filter})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := conn.WriteJSON(wstypes.Request{JSONRPC: "2.0", ID: 1, Method: wstypes.MethodSubscribe, Params: params}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send subscribe: %w", err)
	}

	// 服务端保证订阅响应先于任何推送
	var reply struct {
		Result string         `json:"result"`
		Error  *wstypes.Error `json:"error"`
	}
	if err := conn.ReadJSON(&reply); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read subscribe reply: %w", err)
	}
	if reply.Error != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("subscribe: %s", reply.Error.Message)
	}

	sub := &Subscription{
		ID:   reply.Result,
		conn: conn,
		logs: make(chan *types.LogEntry, 64),
		done: make(chan struct{}),
	}
	go sub.readLoop()
	return sub, nil
}

func (s *Subscription) readLoop() {
	defer close(s.logs)
	for {
		var note wstypes.Notification
		if err := s.conn.ReadJSON(&note); err != nil {
			select {
			case <-s.done:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					s.setErr(err)
				}
			}
			return
		}
		if note.Method != wstypes.MethodSubscription || note.Params.Result == nil {
			continue
		}
		select {
		case s.logs <- note.Params.Result:
		case <-s.done:
			return
		}
	}
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// ErrSubscriptionClosed 订阅已结束
var ErrSubscriptionClosed = errors.New("client: subscription closed")

// Next 等待下一条日志
func (s *Subscription) Next(ctx context.Context) (*types.LogEntry, error) {
	select {
	case entry, ok := <-s.logs:
		if !ok {
			if err := s.Err(); err != nil {
				return nil, err
			}
			return nil, ErrSubscriptionClosed
		}
		return entry, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
