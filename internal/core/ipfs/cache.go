package ipfs

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
)

// maxCachedDocumentBytes 缓存条目解压后的上限，防止压缩炸弹
const maxCachedDocumentBytes = 8 * 1024 * 1024

// DocumentCache 按 CID 缓存文档原始字节
// CID 内容不可变，命中即有效，不需要失效处理；条目以 snappy 压缩存放
type DocumentCache struct {
	store storage.CacheStore
	ttl   time.Duration
}

// NewDocumentCache 创建文档缓存，store 为 nil 时所有操作为空操作
func NewDocumentCache(store storage.CacheStore, ttl time.Duration) *DocumentCache {
	return &DocumentCache{store: store, ttl: ttl}
}

// Get 读取缓存
func (c *DocumentCache) Get(ctx context.Context, cid string) ([]byte, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	encoded, ok, err := c.store.Get(ctx, cid)
	if err != nil || !ok {
		return nil, false
	}
	data, err := decodeEntry(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put 写入缓存，失败只影响命中率
func (c *DocumentCache) Put(ctx context.Context, cid string, data []byte) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Set(ctx, cid, snappy.Encode(nil, data), c.ttl)
}

func decodeEntry(encoded []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(encoded)
	if err != nil {
		return nil, err
	}
	if n > maxCachedDocumentBytes {
		return nil, fmt.Errorf("缓存文档超过上限: %d > %d", n, maxCachedDocumentBytes)
	}
	return snappy.Decode(nil, encoded)
}
