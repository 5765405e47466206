package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/ipfs"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social"
	"github.com/weisyn/socialmaker/pkg/types"
)

var (
	registryAddr = common.HexToAddress("0x50C1a15050C1a15050C1a15050C1a15050C1a150")
	alice        = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol        = common.HexToAddress("0x00000000000000000000000000000000000ca201")
)

type env struct {
	svc  *social.Service
	hist *Service
	tree *merkle.Tree
}

func (e *env) proof(t *testing.T, a common.Address) types.Proof {
	t.Helper()
	p, err := e.tree.AddressProof(a)
	require.NoError(t, err)
	return p
}

func cidOf(s string) common.Hash {
	return crypto.Keccak256Hash([]byte(s))
}

func newEnv(t *testing.T, messages MessageFetcher) *env {
	t.Helper()
	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	led := ledger.New(store, nil, nil)
	svc := social.NewService(led, registryAddr, nil)
	tree, err := merkle.NewAddressTree([]common.Address{alice, bob, carol})
	require.NoError(t, err)
	_, _, err = svc.Create(context.Background(), alice, "Simplon", "simplon", nil, tree.Root())
	require.NoError(t, err)

	return &env{svc: svc, hist: NewService(led, svc, messages), tree: tree}
}

func cids(logs []*types.LogEntry) []string {
	out := make([]string, len(logs))
	for i, e := range logs {
		out[i] = e.Data["cid"]
	}
	return out
}

func TestArticleHistory_NewestFirst(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	for _, c := range []string{"a1", "a2", "a3"} {
		_, err := e.svc.PostArticle(ctx, "simplon", alice, cidOf(c), e.proof(t, alice))
		require.NoError(t, err)
	}
	_, err := e.svc.PostArticle(ctx, "simplon", bob, cidOf("b1"), e.proof(t, bob))
	require.NoError(t, err)

	logs, err := e.hist.ArticleHistory(ctx, "simplon", alice)
	require.NoError(t, err)
	assert.Equal(t, []string{cidOf("a3").Hex(), cidOf("a2").Hex(), cidOf("a1").Hex()}, cids(logs))
}

func TestFeed_ReplaysFollowState(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	p := e.proof(t, alice)

	_, err := e.svc.Follow(ctx, "simplon", alice, bob, p)
	require.NoError(t, err)
	_, err = e.svc.Follow(ctx, "simplon", alice, carol, p)
	require.NoError(t, err)
	// carol 关注 alice 不影响 alice 的关注集合
	_, err = e.svc.Follow(ctx, "simplon", carol, alice, e.proof(t, carol))
	require.NoError(t, err)

	_, err = e.svc.PostArticle(ctx, "simplon", bob, cidOf("b1"), e.proof(t, bob))
	require.NoError(t, err)
	_, err = e.svc.PostArticle(ctx, "simplon", carol, cidOf("c1"), e.proof(t, carol))
	require.NoError(t, err)
	_, err = e.svc.PostArticle(ctx, "simplon", alice, cidOf("own"), p)
	require.NoError(t, err)

	feed, err := e.hist.Feed(ctx, "simplon", alice)
	require.NoError(t, err)
	assert.Equal(t, []string{cidOf("c1").Hex(), cidOf("b1").Hex()}, cids(feed))

	_, err = e.svc.Unfollow(ctx, "simplon", alice, carol, p)
	require.NoError(t, err)
	feed, err = e.hist.Feed(ctx, "simplon", alice)
	require.NoError(t, err)
	assert.Equal(t, []string{cidOf("b1").Hex()}, cids(feed))

	following, err := e.hist.Following(ctx, "simplon", alice)
	require.NoError(t, err)
	assert.Equal(t, map[common.Address]bool{bob: true}, following)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	article := cidOf("article")

	_, err := e.svc.PostComment(ctx, "simplon", bob, article, cidOf("c1"), e.proof(t, bob))
	require.NoError(t, err)
	_, err = e.svc.PostComment(ctx, "simplon", carol, cidOf("other"), cidOf("x"), e.proof(t, carol))
	require.NoError(t, err)
	_, err = e.svc.PostComment(ctx, "simplon", carol, article, cidOf("c2"), e.proof(t, carol))
	require.NoError(t, err)

	logs, err := e.hist.Comments(ctx, "simplon", article)
	require.NoError(t, err)
	assert.Equal(t, []string{cidOf("c1").Hex(), cidOf("c2").Hex()}, cids(logs))
}

func TestConversation_ResetsOnBurn(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	_, err := e.svc.SendMessage(ctx, "simplon", alice, cidOf("m1"), bob, e.proof(t, alice))
	require.NoError(t, err)
	_, err = e.svc.SendMessage(ctx, "simplon", alice, cidOf("other"), carol, e.proof(t, alice))
	require.NoError(t, err)
	_, err = e.svc.SendMessage(ctx, "simplon", bob, cidOf("m2"), alice, e.proof(t, bob))
	require.NoError(t, err)

	logs, err := e.hist.Conversation(ctx, "simplon", alice, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{cidOf("m1").Hex(), cidOf("m2").Hex()}, cids(logs))

	_, err = e.svc.BurnChat(ctx, "simplon", bob, alice, e.proof(t, bob))
	require.NoError(t, err)
	_, err = e.svc.SendMessage(ctx, "simplon", alice, cidOf("m3"), bob, e.proof(t, alice))
	require.NoError(t, err)

	logs, err = e.hist.Conversation(ctx, "simplon", bob, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{cidOf("m3").Hex()}, cids(logs))
}

type fakeMessages map[string]*ipfs.Message

func (f fakeMessages) FetchMessage(_ context.Context, cid string) (*ipfs.Message, error) {
	msg, ok := f[cid]
	if !ok {
		return nil, fmt.Errorf("missing %s", cid)
	}
	return msg, nil
}

func TestResolveMessageChain(t *testing.T) {
	docs := fakeMessages{
		"Qm3": {Content: "third", Metadata: ipfs.MessageMetadata{Parent: "Qm2"}},
		"Qm2": {Content: "second", Metadata: ipfs.MessageMetadata{Parent: "Qm1"}},
		"Qm1": {Content: "first"},
	}
	e := newEnv(t, docs)

	chain, err := e.hist.ResolveMessageChain(context.Background(), "Qm3", 0)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "third", chain[0].Content)
	assert.Equal(t, "first", chain[2].Content)

	chain, err = e.hist.ResolveMessageChain(context.Background(), "Qm3", 2)
	assert.ErrorIs(t, err, ErrChainTooLong)
	assert.Len(t, chain, 2)
}

func TestResolveMessageChain_Cycle(t *testing.T) {
	docs := fakeMessages{
		"QmA": {Content: "a", Metadata: ipfs.MessageMetadata{Parent: "QmB"}},
		"QmB": {Content: "b", Metadata: ipfs.MessageMetadata{Parent: "QmA"}},
	}
	e := newEnv(t, docs)

	chain, err := e.hist.ResolveMessageChain(context.Background(), "QmA", 0)
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestUnknownProject(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.hist.Feed(context.Background(), "nope", alice)
	assert.ErrorIs(t, err, types.ErrProjectNotFound)
}
