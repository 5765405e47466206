// Package event 定义事件总线接口
//
// 账本在事务提交后把每条事件日志发布到 TopicLedgerLog 主题，
// WebSocket 订阅与其他进程内观察者通过 SubscribeLogs 按过滤条件接收。
package event

import "github.com/weisyn/socialmaker/pkg/types"

// TopicLedgerLog 账本事件日志主题，参数为 *types.LogEntry
const TopicLedgerLog = "ledger.log"

// LogHandler 日志订阅回调，在发布者的 goroutine 中同步调用，不能阻塞
type LogHandler func(entry *types.LogEntry)

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 同步订阅主题
	Subscribe(topic string, handler interface{}) error
	// SubscribeAsync 异步订阅主题，transactional 为 true 时同一处理器串行执行
	SubscribeAsync(topic string, handler interface{}, transactional bool) error
	// Unsubscribe 取消订阅
	Unsubscribe(topic string, handler interface{}) error
	// Publish 发布事件
	Publish(topic string, args ...interface{})
	// HasCallback 主题是否有订阅者
	HasCallback(topic string) bool
	// WaitAsync 等待异步处理器完成
	WaitAsync()

	// SubscribeLogs 按过滤条件订阅账本日志，返回订阅 ID
	SubscribeLogs(filter types.LogFilter, handler LogHandler) (string, error)
	// UnsubscribeLogs 取消日志订阅
	UnsubscribeLogs(id string) error
}
