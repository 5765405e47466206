// Package redis 提供基于 Redis 的共享缓存实现
// 多个节点共用同一个 Redis 时，IPFS 文档只需从网关拉取一次
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
)

var errKeyNotFound = errors.New("redis: key not found")

// redisClient 最小化的 Redis 操作接口，测试中替换为 mock
type redisClient interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Options Redis 缓存参数
type Options struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	DefaultTTL time.Duration // Set 未指定 ttl 时使用，0 表示永不过期
}

// Store 实现 CacheStore 接口
// Key 格式：{KeyPrefix}{key}
type Store struct {
	client     redisClient
	keyPrefix  string
	defaultTTL time.Duration
	logger     log.Logger
}

var _ storage.CacheStore = (*Store)(nil)

// New 连接 Redis 并创建缓存
func New(ctx context.Context, opts Options, logger log.Logger) (*Store, error) {
	client, err := newGoRedisClient(opts)
	if err != nil {
		return nil, err
	}
	store, err := newStore(ctx, client, opts, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

func newStore(ctx context.Context, client redisClient, opts Options, logger log.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis 客户端不能为空")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	if logger != nil {
		logger.Infof("Redis 缓存已连接: addr=%s db=%d prefix=%s", opts.Addr, opts.DB, opts.KeyPrefix)
	}
	return &Store{
		client:     client,
		keyPrefix:  opts.KeyPrefix,
		defaultTTL: opts.DefaultTTL,
		logger:     logger,
	}, nil
}

func (s *Store) key(k string) string {
	return s.keyPrefix + k
}

// Get 获取缓存值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		if errors.Is(err, errKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("读取 Redis 缓存失败: %w", err)
	}
	return data, true, nil
}

// Set 写入缓存
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl); err != nil {
		return fmt.Errorf("写入 Redis 缓存失败: %w", err)
	}
	return nil
}

// Delete 删除缓存
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.Del(ctx, s.key(key)); err != nil {
		return fmt.Errorf("删除 Redis 缓存失败: %w", err)
	}
	return nil
}

// Close 关闭连接
func (s *Store) Close() error {
	return s.client.Close()
}
