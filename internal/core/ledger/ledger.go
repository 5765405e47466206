// Package ledger 实现单节点有序账本
//
// 所有修改状态的合约调用经由 Execute 串行执行，每次调用对应一个 Badger 读写事务：
// 调用返回错误时状态写入与事件日志一起丢弃（回滚），成功时一起提交，
// 提交后再把事件发布到事件总线。事件日志按序号持久化，是历史重建的唯一来源。
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/socialmaker/pkg/types"
)

// Ledger 有序账本
type Ledger struct {
	store   storage.BadgerStore
	bus     event.EventBus
	logger  log.Logger
	metrics *Metrics
	now     func() time.Time

	// 写锁，保证调用的全局顺序
	writeMu sync.Mutex
}

// Option 账本可选项
type Option func(*Ledger)

// WithMetrics 使用给定指标
func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New 创建账本，bus 与 logger 可以为 nil
func New(store storage.BadgerStore, bus event.EventBus, logger log.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics == nil {
		l.metrics = NewMetrics(nil)
	}
	return l
}

// Execute 原子地执行一次修改状态的调用
func (l *Ledger) Execute(ctx context.Context, call string, fn func(tx *Tx) error) (*types.Receipt, error) {
	start := time.Now()
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	defer func() {
		l.metrics.duration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	}()

	var committed []*types.LogEntry
	err := l.store.RunInTransaction(ctx, func(btx storage.BadgerTransaction) error {
		tx, err := newTx(btx, true, l.now().UTC())
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		committed = tx.logs
		return nil
	})
	if err != nil {
		if _, ok := types.AsRevert(err); ok {
			l.metrics.calls.WithLabelValues(call, resultReverted).Inc()
			if l.logger != nil {
				l.logger.Debugf("调用回滚: call=%s, reason=%v", call, err)
			}
			return nil, err
		}
		l.metrics.calls.WithLabelValues(call, resultFailed).Inc()
		if l.logger != nil {
			l.logger.Errorf("调用执行失败: call=%s, err=%v", call, err)
		}
		return nil, fmt.Errorf("执行 %s 失败: %w", call, err)
	}

	l.metrics.calls.WithLabelValues(call, resultCommitted).Inc()
	for _, entry := range committed {
		l.metrics.events.WithLabelValues(entry.Name).Inc()
		if l.bus != nil {
			l.bus.Publish(event.TopicLedgerLog, entry)
		}
	}
	if n := len(committed); n > 0 {
		l.metrics.lastSeq.Set(float64(committed[n-1].Seq))
	}

	return &types.Receipt{Call: call, Logs: committed}, nil
}

// View 在只读快照上执行查询，可与其他查询并发
func (l *Ledger) View(ctx context.Context, fn func(tx *Tx) error) error {
	return l.store.View(ctx, func(btx storage.BadgerTransaction) error {
		tx, err := newTx(btx, false, l.now().UTC())
		if err != nil {
			return err
		}
		return fn(tx)
	})
}

// LastSeq 最后一条已提交日志的序号，无日志时为 0
func (l *Ledger) LastSeq(ctx context.Context) (uint64, error) {
	var seq uint64
	err := l.View(ctx, func(tx *Tx) error {
		seq = tx.lastSeq
		return nil
	})
	return seq, err
}

// Logs 按序号升序返回满足过滤条件的日志
func (l *Ledger) Logs(ctx context.Context, filter types.LogFilter) ([]*types.LogEntry, error) {
	var seek []byte
	if filter.FromSeq > 0 {
		seek = logKey(filter.FromSeq)
	}

	var out []*types.LogEntry
	err := l.store.View(ctx, func(btx storage.BadgerTransaction) error {
		return btx.Iterate(prefixLog, seek, func(_, value []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := decodeLog(value)
			if err != nil {
				return err
			}
			if filter.ToSeq != 0 && entry.Seq > filter.ToSeq {
				return storage.ErrStopIteration
			}
			if !filter.Match(entry) {
				return nil
			}
			out = append(out, entry)
			if filter.Limit > 0 && len(out) >= filter.Limit {
				return storage.ErrStopIteration
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("读取事件日志失败: %w", err)
	}
	return out, nil
}
