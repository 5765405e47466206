// Package storage 定义存储接口
//
// BadgerStore 承载账本状态与事件日志，CacheStore 承载按 CID 寻址的文档缓存
// （内存 bigcache 或 Redis 两种实现）。
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrStopIteration Iterate 回调返回它以提前结束遍历，不作为错误返回
var ErrStopIteration = errors.New("stop iteration")

// BadgerStore 键值存储接口
type BadgerStore interface {
	// Close 关闭数据库
	Close() error

	// Get 获取值，键不存在时返回 nil, nil
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 写入键值对
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除键，键不存在不报错
	Delete(ctx context.Context, key []byte) error

	// Exists 判断键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀扫描，返回 map 的键为 string(key)
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// RunInTransaction 在读写事务中执行 fn，fn 返回错误时回滚
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error

	// View 在只读事务中执行 fn，可与其他只读事务并发
	View(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

// BadgerTransaction 事务内操作
type BadgerTransaction interface {
	// Get 获取值，键不存在时返回 nil, nil
	Get(key []byte) ([]byte, error)

	// Set 写入键值对（只读事务中返回错误）
	Set(key, value []byte) error

	// Delete 删除键（只读事务中返回错误）
	Delete(key []byte) error

	// Exists 判断键是否存在
	Exists(key []byte) (bool, error)

	// Iterate 按键升序遍历 prefix 下的键值对
	// seek 非空时从 seek 开始，fn 返回 ErrStopIteration 时提前结束且不报错
	Iterate(prefix, seek []byte, fn func(key, value []byte) error) error
}

// CacheStore 带过期时间的字符串键缓存
type CacheStore interface {
	// Get 获取值，第二个返回值表示是否命中
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set 写入，ttl 为 0 表示使用实现的默认生命周期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除
	Delete(ctx context.Context, key string) error

	// Close 释放资源
	Close() error
}
