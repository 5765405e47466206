// Package event 基于 asaskevich/EventBus 的事件总线实现
// 在原始主题订阅之上增加按 LogFilter 过滤的账本日志订阅
package event

import (
	"fmt"
	"sync"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	eventconfig "github.com/weisyn/socialmaker/internal/config/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/types"
)

// EventBus 事件总线
type EventBus struct {
	bus    evbus.Bus
	config *eventconfig.Config
	logger log.Logger

	// 日志订阅统一由 dispatchLog 分发
	// evbus 按函数指针识别处理器，同一字面量生成的闭包无法逐个取消订阅
	subsMu sync.RWMutex
	subs   map[string]*logSubscription

	published atomic.Uint64
	delivered atomic.Uint64
}

type logSubscription struct {
	id      string
	filter  types.LogFilter
	handler event.LogHandler
}

var _ event.EventBus = (*EventBus)(nil)

// New 创建事件总线
func New(config *eventconfig.Config, logger log.Logger) *EventBus {
	eb := &EventBus{
		bus:    evbus.New(),
		config: config,
		logger: logger,
		subs:   make(map[string]*logSubscription),
	}
	if config.IsEnabled() {
		if err := eb.bus.Subscribe(event.TopicLedgerLog, eb.dispatchLog); err != nil && logger != nil {
			logger.Errorf("注册账本日志分发器失败: %v", err)
		}
	}
	return eb
}

// Subscribe 同步订阅
func (eb *EventBus) Subscribe(topic string, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Subscribe(topic, handler)
}

// SubscribeAsync 异步订阅
func (eb *EventBus) SubscribeAsync(topic string, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(topic, handler, transactional)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(topic string, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(topic, handler)
}

// Publish 发布事件，总线关闭时直接丢弃
func (eb *EventBus) Publish(topic string, args ...interface{}) {
	if !eb.config.IsEnabled() {
		return
	}
	eb.published.Add(1)
	eb.bus.Publish(topic, args...)
}

// HasCallback 主题是否有订阅者
func (eb *EventBus) HasCallback(topic string) bool {
	return eb.bus.HasCallback(topic)
}

// WaitAsync 等待异步处理器完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// SubscribeLogs 按过滤条件订阅账本日志
func (eb *EventBus) SubscribeLogs(filter types.LogFilter, handler event.LogHandler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("日志订阅处理器不能为空")
	}
	if !eb.config.IsEnabled() {
		return "", fmt.Errorf("事件总线未启用")
	}

	sub := &logSubscription{
		id:      uuid.NewString(),
		filter:  filter,
		handler: handler,
	}
	eb.subsMu.Lock()
	eb.subs[sub.id] = sub
	eb.subsMu.Unlock()

	if eb.logger != nil {
		eb.logger.Debugf("新增账本日志订阅: id=%s", sub.id)
	}
	return sub.id, nil
}

// UnsubscribeLogs 取消日志订阅
func (eb *EventBus) UnsubscribeLogs(id string) error {
	eb.subsMu.Lock()
	defer eb.subsMu.Unlock()
	if _, ok := eb.subs[id]; !ok {
		return fmt.Errorf("订阅不存在: %s", id)
	}
	delete(eb.subs, id)
	return nil
}

// SubscriptionCount 当前日志订阅数
func (eb *EventBus) SubscriptionCount() int {
	eb.subsMu.RLock()
	defer eb.subsMu.RUnlock()
	return len(eb.subs)
}

// Stats 已发布事件数与已投递日志数
func (eb *EventBus) Stats() (published, delivered uint64) {
	return eb.published.Load(), eb.delivered.Load()
}

// dispatchLog 把一条日志分发给匹配的订阅
func (eb *EventBus) dispatchLog(entry *types.LogEntry) {
	if entry == nil {
		return
	}
	eb.subsMu.RLock()
	matched := make([]*logSubscription, 0, len(eb.subs))
	for _, sub := range eb.subs {
		if sub.filter.Match(entry) {
			matched = append(matched, sub)
		}
	}
	eb.subsMu.RUnlock()

	for _, sub := range matched {
		sub.handler(entry)
		eb.delivered.Add(1)
	}
}
