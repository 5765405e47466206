package middleware

import (
	"context"
	"sync"
	"time"

	storage "github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/storage"
)

// replayKeyPrefix 与文档缓存共用存储时的键前缀
const replayKeyPrefix = "replay:"

// defaultReplayWindow 未限制时间戳偏差时的登记时长
const defaultReplayWindow = 5 * time.Minute

// ReplayGuard 记录时间戳窗口内已受理的签名请求
// 配置了共享缓存（bigcache/Redis）时登记写入缓存，否则使用进程内表
type ReplayGuard struct {
	store storage.CacheStore

	mu        sync.Mutex
	seen      map[string]time.Time // 键 -> 过期时间
	now       func() time.Time
	lastSweep time.Time
}

// NewReplayGuard 创建重放检查器，store 可为 nil
func NewReplayGuard(store storage.CacheStore) *ReplayGuard {
	return &ReplayGuard{
		store: store,
		seen:  make(map[string]time.Time),
		now:   time.Now,
	}
}

// Mark 首次登记 key 返回 true，有效期内再次登记返回 false
func (g *ReplayGuard) Mark(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = defaultReplayWindow
	}
	// 同一进程内的并发重复请求由锁串行化
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.store != nil {
		_, hit, err := g.store.Get(ctx, replayKeyPrefix+key)
		if err != nil {
			return false, err
		}
		if hit {
			return false, nil
		}
		return true, g.store.Set(ctx, replayKeyPrefix+key, []byte{1}, ttl)
	}

	now := g.now()
	g.sweep(now)
	if exp, ok := g.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.seen[key] = now.Add(ttl)
	return true, nil
}

// sweep 回收过期登记，至多每个默认窗口执行一次
func (g *ReplayGuard) sweep(now time.Time) {
	if now.Sub(g.lastSweep) < defaultReplayWindow {
		return
	}
	g.lastSweep = now
	for key, exp := range g.seen {
		if !now.Before(exp) {
			delete(g.seen, key)
		}
	}
}
