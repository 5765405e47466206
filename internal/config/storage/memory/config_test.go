package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/weisyn/socialmaker/pkg/types"
)

func TestHardMaxCacheSize(t *testing.T) {
	const mb = 1024 * 1024
	tests := []struct {
		name  string
		total uint64
		want  int
	}{
		{"无法探测", 0, defaultHardMaxCacheSize},
		{"小内存取下限", 64 * mb, minHardMaxCacheSize},
		{"按比例", 1024 * mb, 64},
		{"大内存封顶", 64 * 1024 * mb, defaultHardMaxCacheSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hardMaxCacheSize(tt.total))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("使用缓存 TTL", func(t *testing.T) {
		ttl := "30m"
		cfg := New(&types.UserCacheConfig{TTL: &ttl})
		assert.Equal(t, 30*time.Minute, cfg.GetLifeWindow())
	})

	t.Run("无效 TTL 保持默认", func(t *testing.T) {
		ttl := "soon"
		cfg := New(&types.UserCacheConfig{TTL: &ttl})
		assert.Equal(t, defaultLifeWindow, cfg.GetLifeWindow())
	})

	t.Run("直接传入选项", func(t *testing.T) {
		opts := &MemoryOptions{Shards: 8}
		assert.Same(t, opts, New(opts).GetOptions())
	})
}
