// Package memory 提供基于 BigCache 的内存缓存实现
package memory

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/weisyn/socialmaker/internal/config/storage/memory"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
)

// ttlPrefix 单独记录过期时间的键前缀，bigcache 只有全局生命周期
const ttlPrefix = "_ttl_"

// Store 实现 CacheStore 接口
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	config *memoryconfig.Config

	mu     sync.Mutex
	closed bool
	now    func() time.Time
}

var _ storage.CacheStore = (*Store)(nil)

// New 创建 BigCache 内存缓存
func New(config *memoryconfig.Config, logger log.Logger) (*Store, error) {
	cfg := bigcache.DefaultConfig(config.GetLifeWindow())
	cfg.CleanWindow = config.GetCleanWindow()
	cfg.Shards = config.GetShards()
	cfg.MaxEntriesInWindow = config.GetMaxEntriesInWindow()
	cfg.MaxEntrySize = config.GetMaxEntrySize()
	cfg.HardMaxCacheSize = config.GetHardMaxCacheSize()
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("创建 BigCache 实例失败: %w", err)
	}

	return &Store{
		cache:  cache,
		logger: logger,
		config: config,
		now:    time.Now,
	}, nil
}

// Get 获取缓存值，过期条目视为未命中并删除
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, nil
	}

	if s.expired(key) {
		_ = s.cache.Delete(key)
		_ = s.cache.Delete(ttlPrefix + key)
		return nil, false, nil
	}

	value, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, false, nil
		}
		s.logger.Warnf("获取缓存键[%s]失败: %v", key, err)
		return nil, false, err
	}
	return value, true, nil
}

// Set 写入缓存，ttl > 0 时额外记录过期时间
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("内存缓存已关闭")
	}

	if err := s.cache.Set(key, value); err != nil {
		s.logger.Warnf("设置缓存键[%s]失败: %v", key, err)
		return err
	}

	if ttl > 0 {
		expiration := make([]byte, 8)
		binary.LittleEndian.PutUint64(expiration, uint64(s.now().Add(ttl).UnixNano()))
		if err := s.cache.Set(ttlPrefix+key, expiration); err != nil {
			return fmt.Errorf("设置缓存键[%s]的过期时间失败: %w", key, err)
		}
	} else {
		_ = s.cache.Delete(ttlPrefix + key)
	}
	return nil
}

// Delete 删除缓存
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	if err := s.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	_ = s.cache.Delete(ttlPrefix + key)
	return nil
}

// Len 当前条目数（含过期时间记录）
func (s *Store) Len() int {
	return s.cache.Len()
}

// Close 关闭缓存
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.cache.Close()
}

// expired 调用方持有锁
func (s *Store) expired(key string) bool {
	raw, err := s.cache.Get(ttlPrefix + key)
	if err != nil || len(raw) != 8 {
		return false
	}
	deadline := int64(binary.LittleEndian.Uint64(raw))
	return s.now().UnixNano() > deadline
}
