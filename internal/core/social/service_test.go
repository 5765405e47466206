package social

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/pkg/types"
)

var (
	registryAddr = common.HexToAddress("0x50C1a15050C1a15050C1a15050C1a15050C1a150")
	admin        = common.HexToAddress("0x0000000000000000000000000000000000000a0a")
	user2        = common.HexToAddress("0x0000000000000000000000000000000000000b02")
	user3        = common.HexToAddress("0x0000000000000000000000000000000000000b03")
	outsider     = common.HexToAddress("0x0000000000000000000000000000000000000bad")
	sampleCID    = crypto.Keccak256Hash([]byte("article-1"))
	otherCID     = crypto.Keccak256Hash([]byte("article-2"))
)

type fixture struct {
	svc   *Service
	led   *ledger.Ledger
	tree  *merkle.Tree
	users []common.Address
}

func (f *fixture) proof(t *testing.T, addr common.Address) types.Proof {
	t.Helper()
	p, err := f.tree.AddressProof(addr)
	require.NoError(t, err)
	return p
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	led := ledger.New(store, nil, nil)
	users := []common.Address{user2, admin, user3}
	tree, err := merkle.NewAddressTree(users)
	require.NoError(t, err)

	f := &fixture{svc: NewService(led, registryAddr, nil), led: led, tree: tree, users: users}
	_, _, err = f.svc.Create(context.Background(), admin, "Simplon", "simplon", users, tree.Root())
	require.NoError(t, err)
	return f
}

func TestCreate_ProjectLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	name, err := f.svc.GetProjectName(ctx, "simplon")
	require.NoError(t, err)
	assert.Equal(t, "Simplon", name)

	project, err := f.svc.GetProject(ctx, "simplon")
	require.NoError(t, err)
	assert.Equal(t, admin, project.Owner)
	assert.Equal(t, crypto.CreateAddress(registryAddr, 0), project.Account)
	assert.Equal(t, crypto.CreateAddress(registryAddr, 1), project.Network)
	assert.Equal(t, crypto.CreateAddress(registryAddr, 2), project.Messenger)
	assert.Equal(t, crypto.CreateAddress(registryAddr, 3), project.Profile)

	_, err = f.svc.GetProject(ctx, "unknown")
	assert.ErrorIs(t, err, types.ErrProjectNotFound)
}

func TestCreate_EmitsCreateAndUsersAdded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, receipt, err := f.svc.Create(ctx, user2, "Second", "second", []common.Address{user2}, common.Hash{1})
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 2)
	assert.Equal(t, types.EventCreate, receipt.Logs[0].Name)
	assert.Equal(t, "second", receipt.Logs[0].Data["slug"])
	assert.Equal(t, "Second", receipt.Logs[0].Data["name"])
	assert.Equal(t, registryAddr, receipt.Logs[0].Contract)
	assert.Equal(t, types.EventUsersAdded, receipt.Logs[1].Name)
	assert.Equal(t, user2.Hex(), receipt.Logs[1].Data["addresses"])
}

func TestCreate_SlugUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	testCases := []struct {
		name   string
		caller common.Address
		pname  string
	}{
		{name: "同一调用者", caller: admin, pname: "Simplon"},
		{name: "其他调用者", caller: user2, pname: "Other"},
		{name: "空名称", caller: user3, pname: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Create(ctx, tc.caller, tc.pname, "simplon", nil, common.Hash{})
			assert.ErrorIs(t, err, types.ErrSlugNameAlreadyExist)
		})
	}

	name, err := f.svc.GetProjectName(ctx, "simplon")
	require.NoError(t, err)
	assert.Equal(t, "Simplon", name)
}

func TestCreate_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.svc.Create(ctx, admin, "", "x", nil, common.Hash{})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, _, err = f.svc.Create(ctx, admin, "X", "", nil, common.Hash{})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestListProjects_CreationOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.svc.Create(ctx, user2, "B", "b", nil, common.Hash{})
	require.NoError(t, err)
	_, _, err = f.svc.Create(ctx, user3, "A", "a", nil, common.Hash{})
	require.NoError(t, err)

	projects, err := f.svc.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, []string{"simplon", "b", "a"}, []string{projects[0].Slug, projects[1].Slug, projects[2].Slug})
}

func TestIsUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, u := range f.users {
		ok, err := f.svc.IsUser(ctx, "simplon", u, f.proof(t, u))
		require.NoError(t, err)
		assert.True(t, ok, u.Hex())
	}

	ok, err := f.svc.IsUser(ctx, "simplon", outsider, f.proof(t, user2))
	require.NoError(t, err)
	assert.False(t, ok)
}

// 非成员调用任何门禁操作都回滚 OnlyUser
func TestGatedCalls_OnlyUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bad := f.proof(t, user2)

	calls := gatedCalls(f, outsider, bad)
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(ctx), types.ErrOnlyUser)
		})
	}

	_, err := f.svc.UpdatePseudo(ctx, "simplon", outsider, "x", bad)
	assert.ErrorIs(t, err, types.ErrOnlyUser)
	_, err = f.svc.UpdateStatus(ctx, "simplon", outsider, true, bad)
	assert.ErrorIs(t, err, types.ErrOnlyUser)
}

// 服务关闭时成员调用门禁操作回滚 OnlyService
func TestGatedCalls_OnlyService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ToggleServices(ctx, "simplon", admin)
	require.NoError(t, err)

	calls := gatedCalls(f, user2, f.proof(t, user2))
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(ctx), types.ErrOnlyService)
		})
	}

	// 资料更新不受服务开关影响
	_, err = f.svc.UpdatePseudo(ctx, "simplon", user2, "neo", f.proof(t, user2))
	assert.NoError(t, err)
}

// 成员与服务同时不满足时先报 OnlyUser
func TestGatedCalls_UserCheckedFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ToggleServices(ctx, "simplon", admin)
	require.NoError(t, err)

	_, err = f.svc.PostArticle(ctx, "simplon", outsider, sampleCID, nil)
	assert.ErrorIs(t, err, types.ErrOnlyUser)
}

func gatedCalls(f *fixture, caller common.Address, proof types.Proof) map[string]func(ctx context.Context) error {
	slug := "simplon"
	return map[string]func(ctx context.Context) error{
		"postArticle": func(ctx context.Context) error {
			_, err := f.svc.PostArticle(ctx, slug, caller, sampleCID, proof)
			return err
		},
		"postComment": func(ctx context.Context) error {
			_, err := f.svc.PostComment(ctx, slug, caller, sampleCID, otherCID, proof)
			return err
		},
		"follow": func(ctx context.Context) error {
			_, err := f.svc.Follow(ctx, slug, caller, user3, proof)
			return err
		},
		"unfollow": func(ctx context.Context) error {
			_, err := f.svc.Unfollow(ctx, slug, caller, user3, proof)
			return err
		},
		"like": func(ctx context.Context) error {
			_, err := f.svc.Like(ctx, slug, caller, sampleCID, proof)
			return err
		},
		"unlike": func(ctx context.Context) error {
			_, err := f.svc.Unlike(ctx, slug, caller, sampleCID, proof)
			return err
		},
		"pin": func(ctx context.Context) error {
			_, err := f.svc.Pin(ctx, slug, caller, sampleCID, proof)
			return err
		},
		"unpin": func(ctx context.Context) error {
			_, err := f.svc.Unpin(ctx, slug, caller, sampleCID, proof)
			return err
		},
		"getLastArticleFrom": func(ctx context.Context) error {
			_, err := f.svc.GetLastArticleFrom(ctx, slug, caller, user2, proof)
			return err
		},
		"getLastCommentByArticle": func(ctx context.Context) error {
			_, err := f.svc.GetLastCommentByArticle(ctx, slug, caller, sampleCID, proof)
			return err
		},
		"sendMessage": func(ctx context.Context) error {
			_, err := f.svc.SendMessage(ctx, slug, caller, sampleCID, user3, proof)
			return err
		},
		"getCurrentCID": func(ctx context.Context) error {
			_, err := f.svc.GetCurrentCID(ctx, slug, caller, user3, proof)
			return err
		},
		"burnChat": func(ctx context.Context) error {
			_, err := f.svc.BurnChat(ctx, slug, caller, user3, proof)
			return err
		},
	}
}

func TestToggles_StrictTwoState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	proof := f.proof(t, user2)
	slug := "simplon"

	testCases := []struct {
		name      string
		set       func() (*types.Receipt, error)
		unset     func() (*types.Receipt, error)
		errSet    error
		errUnset  error
		setName   string
		unsetName string
		present   func() (bool, error)
	}{
		{
			name:      "follow",
			set:       func() (*types.Receipt, error) { return f.svc.Follow(ctx, slug, user2, user3, proof) },
			unset:     func() (*types.Receipt, error) { return f.svc.Unfollow(ctx, slug, user2, user3, proof) },
			errSet:    types.ErrAlreadyFollowed,
			errUnset:  types.ErrAlreadyUnfollowed,
			setName:   types.EventFollowed,
			unsetName: types.EventUnfollowed,
			present:   func() (bool, error) { return f.svc.IsFollowing(ctx, slug, user2, user3) },
		},
		{
			name:      "like",
			set:       func() (*types.Receipt, error) { return f.svc.Like(ctx, slug, user2, sampleCID, proof) },
			unset:     func() (*types.Receipt, error) { return f.svc.Unlike(ctx, slug, user2, sampleCID, proof) },
			errSet:    types.ErrAlreadyLiked,
			errUnset:  types.ErrAlreadyUnliked,
			setName:   types.EventLiked,
			unsetName: types.EventUnliked,
			present:   func() (bool, error) { return f.svc.IsLiked(ctx, slug, sampleCID, user2) },
		},
		{
			name:      "pin",
			set:       func() (*types.Receipt, error) { return f.svc.Pin(ctx, slug, user2, sampleCID, proof) },
			unset:     func() (*types.Receipt, error) { return f.svc.Unpin(ctx, slug, user2, sampleCID, proof) },
			errSet:    types.ErrAlreadyPinned,
			errUnset:  types.ErrAlreadyUnpinned,
			setName:   types.EventPinned,
			unsetName: types.EventUnpinned,
			present:   func() (bool, error) { return f.svc.IsPinned(ctx, slug, sampleCID, user2) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// 初始 ABSENT，取消回滚
			_, err := tc.unset()
			assert.ErrorIs(t, err, tc.errUnset)

			receipt, err := tc.set()
			require.NoError(t, err)
			require.Len(t, receipt.Logs, 1)
			assert.Equal(t, tc.setName, receipt.Logs[0].Name)

			_, err = tc.set()
			assert.ErrorIs(t, err, tc.errSet)

			ok, err := tc.present()
			require.NoError(t, err)
			assert.True(t, ok)

			receipt, err = tc.unset()
			require.NoError(t, err)
			assert.Equal(t, tc.unsetName, receipt.Logs[0].Name)

			_, err = tc.unset()
			assert.ErrorIs(t, err, tc.errUnset)

			ok, err = tc.present()
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFollow_EventTopics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt, err := f.svc.Follow(ctx, "simplon", user2, user3, f.proof(t, user2))
	require.NoError(t, err)
	entry := receipt.Logs[0]
	assert.Equal(t, user2, entry.TopicAddress(0))
	assert.Equal(t, user3, entry.TopicAddress(1))
}

func TestLike_EventTopics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt, err := f.svc.Like(ctx, "simplon", user3, sampleCID, f.proof(t, user3))
	require.NoError(t, err)
	entry := receipt.Logs[0]
	assert.Equal(t, sampleCID, entry.Topic(0))
	assert.Equal(t, user3, entry.TopicAddress(1))
}

// 部署成员 [user2, admin, user3]，user2 发文后可读回同一 cid
func TestScenario_PostArticleThenRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	proof := f.proof(t, user2)

	receipt, err := f.svc.PostArticle(ctx, "simplon", user2, sampleCID, proof)
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, types.EventArticlePosted, receipt.Logs[0].Name)
	assert.Equal(t, user2, receipt.Logs[0].TopicAddress(0))
	assert.Equal(t, sampleCID.Hex(), receipt.Logs[0].Data["cid"])

	got, err := f.svc.GetLastArticleFrom(ctx, "simplon", user2, user2, proof)
	require.NoError(t, err)
	assert.Equal(t, sampleCID, got)

	mine, err := f.svc.GetMyLastArticle(ctx, "simplon", user2)
	require.NoError(t, err)
	assert.Equal(t, sampleCID, mine)

	// 新文章覆盖指针
	_, err = f.svc.PostArticle(ctx, "simplon", user2, otherCID, proof)
	require.NoError(t, err)
	got, err = f.svc.GetLastArticleFrom(ctx, "simplon", user3, user2, f.proof(t, user3))
	require.NoError(t, err)
	assert.Equal(t, otherCID, got)
}

func TestPostComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt, err := f.svc.PostComment(ctx, "simplon", user3, sampleCID, otherCID, f.proof(t, user3))
	require.NoError(t, err)
	assert.Equal(t, types.EventCommentPosted, receipt.Logs[0].Name)
	assert.Equal(t, sampleCID, receipt.Logs[0].Topic(0))
	assert.Equal(t, user3, receipt.Logs[0].TopicAddress(1))

	got, err := f.svc.GetLastCommentByArticle(ctx, "simplon", user2, sampleCID, f.proof(t, user2))
	require.NoError(t, err)
	assert.Equal(t, otherCID, got)
}

func TestMessenger_BothSidesReadSamePointer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt, err := f.svc.SendMessage(ctx, "simplon", user2, sampleCID, user3, f.proof(t, user2))
	require.NoError(t, err)
	assert.Equal(t, types.EventMessageSended, receipt.Logs[0].Name)
	assert.Equal(t, user2, receipt.Logs[0].TopicAddress(0))
	assert.Equal(t, user3, receipt.Logs[0].TopicAddress(1))

	fromSender, err := f.svc.GetCurrentCID(ctx, "simplon", user2, user3, f.proof(t, user2))
	require.NoError(t, err)
	fromRecipient, err := f.svc.GetCurrentCID(ctx, "simplon", user3, user2, f.proof(t, user3))
	require.NoError(t, err)
	assert.Equal(t, sampleCID, fromSender)
	assert.Equal(t, sampleCID, fromRecipient)

	// 回复覆盖同一会话
	_, err = f.svc.SendMessage(ctx, "simplon", user3, otherCID, user2, f.proof(t, user3))
	require.NoError(t, err)
	fromSender, err = f.svc.GetCurrentCID(ctx, "simplon", user2, user3, f.proof(t, user2))
	require.NoError(t, err)
	assert.Equal(t, otherCID, fromSender)
}

func TestMessenger_BurnRequiresActiveService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	proof := f.proof(t, user3)

	_, err := f.svc.SendMessage(ctx, "simplon", user2, sampleCID, user3, f.proof(t, user2))
	require.NoError(t, err)

	_, err = f.svc.ToggleServices(ctx, "simplon", admin)
	require.NoError(t, err)
	_, err = f.svc.BurnChat(ctx, "simplon", user3, user2, proof)
	assert.ErrorIs(t, err, types.ErrOnlyService)

	_, err = f.svc.ToggleServices(ctx, "simplon", admin)
	require.NoError(t, err)
	receipt, err := f.svc.BurnChat(ctx, "simplon", user3, user2, proof)
	require.NoError(t, err)
	assert.Equal(t, types.EventBurnChat, receipt.Logs[0].Name)

	cid, err := f.svc.GetCurrentCID(ctx, "simplon", user2, user3, f.proof(t, user2))
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, cid)
}

func TestToggleServices_FlipsBoth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assertAll := func(want bool) {
		for _, id := range types.AllServices() {
			ok, err := f.svc.IsServiceActive(ctx, "simplon", id)
			require.NoError(t, err)
			assert.Equal(t, want, ok, id.String())
		}
	}

	assertAll(true)
	receipt, err := f.svc.ToggleServices(ctx, "simplon", admin)
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 2)
	assert.Equal(t, "false", receipt.Logs[0].Data["active"])
	assertAll(false)

	_, err = f.svc.ToggleServices(ctx, "simplon", admin)
	require.NoError(t, err)
	assertAll(true)

	_, err = f.svc.ToggleServices(ctx, "simplon", user2)
	assert.ErrorIs(t, err, types.ErrOwnableUnauthorizedAccount)
	revert, ok := types.AsRevert(err)
	require.True(t, ok)
	assert.Equal(t, []string{user2.Hex()}, revert.Args)

	ok, err = f.svc.IsServiceActive(ctx, "simplon", types.ServiceID(9))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleService_Single(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ToggleService(ctx, "simplon", admin, types.ServiceMessenger)
	require.NoError(t, err)

	network, err := f.svc.IsServiceActive(ctx, "simplon", types.ServiceNetwork)
	require.NoError(t, err)
	messenger, err := f.svc.IsServiceActive(ctx, "simplon", types.ServiceMessenger)
	require.NoError(t, err)
	assert.True(t, network)
	assert.False(t, messenger)

	// 图谱仍可用，私信被关闭
	_, err = f.svc.PostArticle(ctx, "simplon", user2, sampleCID, f.proof(t, user2))
	assert.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, "simplon", user2, sampleCID, user3, f.proof(t, user2))
	assert.ErrorIs(t, err, types.ErrOnlyService)

	_, err = f.svc.ToggleService(ctx, "simplon", admin, types.ServiceID(7))
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = f.svc.ToggleService(ctx, "simplon", user3, types.ServiceNetwork)
	assert.ErrorIs(t, err, types.ErrOwnableUnauthorizedAccount)
}

func TestAddMoreUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	newcomer := common.HexToAddress("0x0000000000000000000000000000000000000c04")

	grown, err := merkle.NewAddressTree(append(append([]common.Address{}, f.users...), newcomer))
	require.NoError(t, err)

	_, err = f.svc.AddMoreUser(ctx, "simplon", user2, []common.Address{newcomer}, grown.Root())
	assert.ErrorIs(t, err, types.ErrOnlyAdmin)

	receipt, err := f.svc.AddMoreUser(ctx, "simplon", admin, []common.Address{newcomer}, grown.Root())
	require.NoError(t, err)
	assert.Equal(t, types.EventUsersAdded, receipt.Logs[0].Name)
	assert.Equal(t, grown.Root().Hex(), receipt.Logs[0].Data["root"])

	proof, err := grown.AddressProof(newcomer)
	require.NoError(t, err)
	_, err = f.svc.PostArticle(ctx, "simplon", newcomer, sampleCID, proof)
	assert.NoError(t, err)

	// 旧证明随根替换失效
	_, err = f.svc.PostArticle(ctx, "simplon", user2, sampleCID, f.proof(t, user2))
	assert.ErrorIs(t, err, types.ErrOnlyUser)
}

// 管理员提交的根不被重新计算
func TestAddMoreUser_RootTrusted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bogus := common.HexToHash("0xdeadbeef")

	_, err := f.svc.AddMoreUser(ctx, "simplon", admin, []common.Address{user2}, bogus)
	require.NoError(t, err)

	ok, err := f.svc.IsUser(ctx, "simplon", user2, f.proof(t, user2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slug := "simplon"

	_, err := f.svc.CreateProfile(ctx, slug, user2, user2, "Self")
	assert.ErrorIs(t, err, types.ErrOwnableUnauthorizedAccount)

	receipt, err := f.svc.CreateProfile(ctx, slug, admin, user2, "Alice")
	require.NoError(t, err)
	assert.Equal(t, types.EventCreateProfile, receipt.Logs[0].Name)
	assert.Equal(t, user2, receipt.Logs[0].TopicAddress(0))

	_, err = f.svc.UpdatePseudo(ctx, slug, user2, "al", f.proof(t, user2))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, slug, user2, true, f.proof(t, user2))
	require.NoError(t, err)

	p, err := f.svc.GetMyProfile(ctx, slug, user2)
	require.NoError(t, err)
	assert.Equal(t, types.Profile{Name: "Alice", Pseudo: "al", Status: true}, p)

	// 重设名称保留昵称与状态
	_, err = f.svc.CreateProfile(ctx, slug, admin, user2, "Alicia")
	require.NoError(t, err)
	p, err = f.svc.GetProfile(ctx, slug, user2)
	require.NoError(t, err)
	assert.Equal(t, types.Profile{Name: "Alicia", Pseudo: "al", Status: true}, p)
}

func TestRevertedCallLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.led.LastSeq(ctx)
	require.NoError(t, err)

	_, err = f.svc.Follow(ctx, "simplon", outsider, user2, nil)
	require.Error(t, err)
	_, err = f.svc.Unfollow(ctx, "simplon", user2, user3, f.proof(t, user2))
	require.Error(t, err)

	after, err := f.led.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUnknownProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.PostArticle(ctx, "nope", user2, sampleCID, f.proof(t, user2))
	assert.ErrorIs(t, err, types.ErrProjectNotFound)
	_, err = f.svc.IsUser(ctx, "nope", user2, nil)
	assert.ErrorIs(t, err, types.ErrProjectNotFound)
}
