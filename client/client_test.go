package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/weisyn/socialmaker/internal/api/http"
	apiconfig "github.com/weisyn/socialmaker/internal/config/api"
	eventconfig "github.com/weisyn/socialmaker/internal/config/event"
	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/merkle"
	eventimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/event"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/internal/core/social/history"
	"github.com/weisyn/socialmaker/pkg/types"
)

const slug = "simplon"

type fixture struct {
	url    string
	tree   *merkle.Tree
	owner  *ecdsa.PrivateKey
	member *ecdsa.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := eventimpl.New(eventconfig.New(nil), nil)
	led := ledger.New(store, bus, nil)
	svc := social.NewService(led, common.HexToAddress("0x50C1a15050C1a15050C1a15050C1a15050C1a150"), nil)

	f := &fixture{}
	f.owner, err = crypto.GenerateKey()
	require.NoError(t, err)
	f.member, err = crypto.GenerateKey()
	require.NoError(t, err)
	f.tree, err = merkle.NewAddressTree([]common.Address{
		crypto.PubkeyToAddress(f.owner.PublicKey),
		crypto.PubkeyToAddress(f.member.PublicKey),
	})
	require.NoError(t, err)

	opts := apiconfig.New(nil).GetOptions()
	opts.ReadRateLimit, opts.WriteRateLimit = 0, 0
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(apihttp.NewRouter(apihttp.RouterDeps{
		Options:    opts,
		Social:     svc,
		History:    history.NewService(led, svc, nil),
		Ledger:     led,
		EventBus:   bus,
		Registerer: reg,
		Gatherer:   reg,
		BufferSize: 16,
	}))
	t.Cleanup(srv.Close)
	f.url = srv.URL
	return f
}

func (f *fixture) proof(t *testing.T, key *ecdsa.PrivateKey) types.Proof {
	t.Helper()
	p, err := f.tree.AddressProof(crypto.PubkeyToAddress(key.PublicKey))
	require.NoError(t, err)
	return p
}

func TestClient_SocialFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := New(f.url, WithSigner(f.owner))
	member := New(f.url, WithSigner(f.member))

	r, err := owner.CreateProject(ctx, "Simplon", slug, nil, f.tree.Root())
	require.NoError(t, err)
	assert.NotZero(t, r.Seq)

	project, err := New(f.url).GetProject(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, owner.Address(), project.Owner)

	ok, err := member.IsUser(ctx, slug, member.Address(), f.proof(t, f.member))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = member.Follow(ctx, slug, owner.Address(), f.proof(t, f.member))
	require.NoError(t, err)
	_, err = member.Follow(ctx, slug, owner.Address(), f.proof(t, f.member))
	assert.True(t, errors.Is(err, types.ErrAlreadyFollowed))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	following, err := member.IsFollowing(ctx, slug, member.Address(), owner.Address())
	require.NoError(t, err)
	assert.True(t, following)

	article := crypto.Keccak256Hash([]byte("article"))
	_, err = owner.PostArticle(ctx, slug, article, f.proof(t, f.owner))
	require.NoError(t, err)

	last, err := member.GetLastArticleFrom(ctx, slug, owner.Address(), f.proof(t, f.member))
	require.NoError(t, err)
	assert.Equal(t, article, last.Hash())
	assert.Equal(t, content.ToCIDv0(article), last.CID)

	_, err = member.Like(ctx, slug, article, f.proof(t, f.member))
	require.NoError(t, err)
	liked, err := member.IsLiked(ctx, slug, article, member.Address())
	require.NoError(t, err)
	assert.True(t, liked)

	logs, err := member.Logs(ctx, types.LogFilter{Names: []string{types.EventArticlePosted}})
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestClient_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"未配置私钥", func() error {
			_, err := New(f.url).ToggleServices(ctx, slug)
			return err
		}, ErrNoSigner},
		{"项目不存在", func() error {
			_, err := New(f.url).GetProject(ctx, "nope")
			return err
		}, types.ErrProjectNotFound},
		{"非所有者翻转开关", func() error {
			owner := New(f.url, WithSigner(f.owner))
			if _, err := owner.CreateProject(ctx, "Simplon", slug, nil, f.tree.Root()); err != nil {
				return err
			}
			_, err := New(f.url, WithSigner(f.member)).ToggleServices(ctx, slug)
			return err
		}, types.ErrOwnableUnauthorizedAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}
}

func TestClient_RepeatedCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := New(f.url, WithSigner(f.owner))
	fixed := time.Now()
	owner.now = func() time.Time { return fixed }

	_, err := owner.CreateProject(ctx, "Simplon", slug, nil, f.tree.Root())
	require.NoError(t, err)

	t.Run("同一秒内的相同调用都被受理", func(t *testing.T) {
		_, err := owner.ToggleService(ctx, slug, 1)
		require.NoError(t, err)
		_, err = owner.ToggleService(ctx, slug, 1)
		require.NoError(t, err)

		active, err := owner.IsServiceActive(ctx, slug, 1)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("签名时间戳严格递增", func(t *testing.T) {
		a := owner.nextTimestamp()
		b := owner.nextTimestamp()
		assert.Equal(t, a+1, b)
	})
}

func TestClient_SubscribeLogs(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	owner := New(f.url, WithSigner(f.owner))
	_, err := owner.CreateProject(ctx, "Simplon", slug, nil, f.tree.Root())
	require.NoError(t, err)

	sub, err := New(f.url).SubscribeLogs(ctx, types.LogFilter{Names: []string{types.EventCreate, types.EventFollowed}})
	require.NoError(t, err)
	defer sub.Close()
	assert.NotEmpty(t, sub.ID)

	// 订阅前的日志通过回放收到
	entry, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.EventCreate, entry.Name)

	member := New(f.url, WithSigner(f.member))
	_, err = member.Follow(ctx, slug, owner.Address(), f.proof(t, f.member))
	require.NoError(t, err)

	entry, err = sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.EventFollowed, entry.Name)
	assert.Greater(t, entry.Seq, uint64(1))
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		revert string
	}{
		{"带参数的回滚", 403, `{"code":"OwnableUnauthorizedAccount","layer":"contract","details":{"revert":"OwnableUnauthorizedAccount","args":["0x01"]}}`, "OwnableUnauthorizedAccount"},
		{"仅 detail 的回滚", 409, `{"code":"AlreadyLiked","layer":"contract","detail":"AlreadyLiked"}`, "AlreadyLiked"},
		{"网关错误", 401, `{"code":"AUTH_MISSING_HEADERS","layer":"gateway"}`, ""},
		{"非 JSON", 502, `bad gateway`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeError(tt.status, []byte(tt.body))
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			if tt.revert == "" {
				assert.Nil(t, apiErr.Revert)
				return
			}
			require.NotNil(t, apiErr.Revert)
			assert.Equal(t, tt.revert, apiErr.Revert.Name)
		})
	}
}
