package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/types"
	"go.uber.org/zap"
)

// ErrSlowConsumer 推送缓冲区溢出，订阅被关闭
var ErrSlowConsumer = errors.New("订阅推送缓冲区溢出")

// LogReader 历史日志读取
type LogReader interface {
	Logs(ctx context.Context, filter types.LogFilter) ([]*types.LogEntry, error)
}

// Sender 向连接推送一条日志
type Sender func(subscriptionID string, entry *types.LogEntry, replayed bool) error

// SubscriptionManager 日志订阅管理器
// 每个订阅先在事件总线登记，再回放历史日志，随后推送实时日志；
// 按序号去重，回放与实时之间既不丢失也不重复。
type SubscriptionManager struct {
	logger     *zap.Logger
	eventBus   event.EventBus
	logs       LogReader
	bufferSize int

	mu            sync.Mutex
	subscriptions map[string]*Subscription
}

// Subscription 订阅信息
type Subscription struct {
	ID      string
	Owner   string // 所属连接标识
	Filter  types.LogFilter
	busID   string
	queue   chan *types.LogEntry
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	errOnce sync.Once
	err     error
}

// Err 订阅结束原因
func (s *Subscription) Err() error {
	<-s.done
	return s.err
}

func (s *Subscription) fail(err error) {
	s.errOnce.Do(func() {
		s.err = err
		s.cancel()
	})
}

// NewSubscriptionManager 创建订阅管理器
func NewSubscriptionManager(logger *zap.Logger, eventBus event.EventBus, logs LogReader, bufferSize int) *SubscriptionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &SubscriptionManager{
		logger:        logger,
		eventBus:      eventBus,
		logs:          logs,
		bufferSize:    bufferSize,
		subscriptions: make(map[string]*Subscription),
	}
}

// Subscribe 创建订阅并登记到事件总线，此后的实时日志进入缓冲区；
// 调用方必须随后调用 Start 开始推送
func (m *SubscriptionManager) Subscribe(ctx context.Context, owner string, filter types.LogFilter) (*Subscription, error) {
	if m.eventBus == nil {
		return nil, errors.New("事件总线不可用")
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ID:     "0x" + uuid.NewString()[:8],
		Owner:  owner,
		Filter: filter,
		queue:  make(chan *types.LogEntry, m.bufferSize),
		ctx:    subCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// 实时日志不受 Limit 约束
	live := filter
	live.Limit = 0
	busID, err := m.eventBus.SubscribeLogs(live, func(entry *types.LogEntry) {
		select {
		case sub.queue <- entry:
		default:
			sub.fail(ErrSlowConsumer)
		}
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("订阅事件总线失败: %w", err)
	}
	sub.busID = busID

	m.mu.Lock()
	m.subscriptions[sub.ID] = sub
	m.mu.Unlock()

	m.logger.Info("New log subscription",
		zap.String("id", sub.ID),
		zap.String("owner", owner),
		zap.Uint64("from_seq", filter.FromSeq))
	return sub, nil
}

// Start 启动推送协程
func (m *SubscriptionManager) Start(sub *Subscription, send Sender) {
	go m.run(sub.ctx, sub, send)
}

// run 回放历史后推送实时日志，直到取消或出错
func (m *SubscriptionManager) run(ctx context.Context, sub *Subscription, send Sender) {
	defer func() {
		m.remove(sub)
		close(sub.done)
	}()

	var last uint64
	var replayed bool
	if m.logs != nil {
		history, err := m.logs.Logs(ctx, sub.Filter)
		if err != nil {
			sub.fail(fmt.Errorf("回放历史日志失败: %w", err))
			return
		}
		for _, entry := range history {
			if err := send(sub.ID, entry, true); err != nil {
				sub.fail(err)
				return
			}
			last, replayed = entry.Seq, true
		}
	}

	for {
		select {
		case <-ctx.Done():
			sub.fail(ctx.Err())
			return
		case entry := <-sub.queue:
			if replayed && entry.Seq <= last {
				continue
			}
			if err := send(sub.ID, entry, false); err != nil {
				sub.fail(err)
				return
			}
			last, replayed = entry.Seq, true
		}
	}
}

// Unsubscribe 取消订阅，订阅不存在或不属于 owner 时返回 false
func (m *SubscriptionManager) Unsubscribe(owner, id string) bool {
	m.mu.Lock()
	sub, ok := m.subscriptions[id]
	m.mu.Unlock()
	if !ok || sub.Owner != owner {
		return false
	}
	sub.fail(context.Canceled)
	<-sub.done
	return true
}

// CleanupByOwner 清理连接的全部订阅
func (m *SubscriptionManager) CleanupByOwner(owner string) {
	m.mu.Lock()
	var subs []*Subscription
	for _, sub := range m.subscriptions {
		if sub.Owner == owner {
			subs = append(subs, sub)
		}
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.fail(context.Canceled)
		<-sub.done
	}
	if len(subs) > 0 {
		m.logger.Info("清理连接的日志订阅",
			zap.String("owner", owner),
			zap.Int("subscription_count", len(subs)))
	}
}

// Count 当前订阅数
func (m *SubscriptionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscriptions)
}

func (m *SubscriptionManager) remove(sub *Subscription) {
	m.mu.Lock()
	delete(m.subscriptions, sub.ID)
	m.mu.Unlock()

	if err := m.eventBus.UnsubscribeLogs(sub.busID); err != nil {
		m.logger.Warn("Failed to unsubscribe from event bus",
			zap.String("subscriptionID", sub.ID),
			zap.Error(err))
	}
	m.logger.Debug("Log subscription closed", zap.String("id", sub.ID), zap.Error(sub.err))
}
