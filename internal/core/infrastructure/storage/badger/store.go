// Package badger 提供基于 BadgerDB 的存储实现
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v3"
	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
	"go.uber.org/zap"
)

// ErrStoreClosed 存储已关闭
var ErrStoreClosed = errors.New("badger 存储已关闭")

// Store 实现 BadgerStore 接口
type Store struct {
	db     *badgerdb.DB
	config *badgerconfig.Config
	logger log.Logger

	// 关闭过程中拒绝新的写入
	mu     sync.RWMutex
	closed bool
}

var _ interfaces.BadgerStore = (*Store)(nil)

// New 打开 BadgerDB
func New(config *badgerconfig.Config, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = nopLogger{}
	}

	var opts badgerdb.Options
	if config.IsInMemory() {
		logger.Info("使用内存模式 BadgerDB，数据不会持久化")
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dataDir := config.GetPath()
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("创建 BadgerDB 数据目录失败: %w", err)
		}
		logger.Infof("初始化 BadgerDB 存储，数据目录: %s", dataDir)
		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = config.IsSyncWritesEnabled()
		opts.ValueLogFileSize = config.GetValueLogFileSize()
	}

	opts.MemTableSize = config.GetMemTableSize()
	opts.BlockCacheSize = config.GetCacheSize()
	opts.IndexCacheSize = config.GetCacheSize()
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 BadgerDB 失败: %w", err)
	}

	return &Store{
		db:     db,
		config: config,
		logger: logger,
	}, nil
}

// nopLogger 未注入日志时使用
type nopLogger struct{}

func (nopLogger) Debug(string)                   {}
func (nopLogger) Debugf(string, ...interface{})  {}
func (nopLogger) Info(string)                    {}
func (nopLogger) Infof(string, ...interface{})   {}
func (nopLogger) Warn(string)                    {}
func (nopLogger) Warnf(string, ...interface{})   {}
func (nopLogger) Error(string)                   {}
func (nopLogger) Errorf(string, ...interface{})  {}
func (nopLogger) Fatal(string)                   {}
func (nopLogger) Fatalf(string, ...interface{})  {}
func (nopLogger) With(...interface{}) log.Logger { return nopLogger{} }
func (nopLogger) Sync() error                    { return nil }
func (nopLogger) GetZapLogger() *zap.Logger      { return zap.NewNop() }

// badgerLogger 把 badger 内部日志转到统一日志，Info 降级为 Debug
type badgerLogger struct {
	logger log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[badger] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[badger] "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[badger] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[badger] "+format, args...)
}

// Close 关闭数据库，重复关闭直接返回
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("关闭 BadgerDB 存储")
	return s.db.Close()
}

// guard 持有读锁直到返回的 release 被调用，保证 Close 不会与进行中的操作交错
func (s *Store) guard() (func(), error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	return s.mu.RUnlock, nil
}

// Get 获取值
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.View(ctx, func(tx interfaces.BadgerTransaction) error {
		v, err := tx.Get(key)
		value = v
		return err
	})
	return value, err
}

// Set 写入键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	return s.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		return tx.Set(key, value)
	})
}

// Delete 删除键
func (s *Store) Delete(ctx context.Context, key []byte) error {
	return s.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		return tx.Delete(key)
	})
}

// Exists 判断键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := s.View(ctx, func(tx interfaces.BadgerTransaction) error {
		ok, err := tx.Exists(key)
		exists = ok
		return err
	})
	return exists, err
}

// PrefixScan 按前缀扫描
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	result := make(map[string][]byte)
	err := s.View(ctx, func(tx interfaces.BadgerTransaction) error {
		return tx.Iterate(prefix, nil, func(key, value []byte) error {
			result[string(key)] = value
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RunInTransaction 在读写事务中执行 fn
// fn 返回错误或 ctx 已取消时事务被丢弃，不写入任何数据
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	release, err := s.guard()
	if err != nil {
		return err
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}

	txn := s.db.NewTransaction(true)
	tx := newTransaction(txn, true)
	defer tx.discard()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tx.commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// View 在只读事务中执行 fn
func (s *Store) View(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	release, err := s.guard()
	if err != nil {
		return err
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}

	txn := s.db.NewTransaction(false)
	tx := newTransaction(txn, false)
	defer tx.discard()
	return fn(tx)
}
