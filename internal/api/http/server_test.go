package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	apiconfig "github.com/weisyn/socialmaker/internal/config/api"
	badgerconfig "github.com/weisyn/socialmaker/internal/config/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/signature"
	infralog "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/internal/core/social/history"
	"github.com/weisyn/socialmaker/pkg/types"
)

const testCID = "QmUNLLsPACCz1vLxQVkXqqLX5R1X345qqfHbsf67hvA3Nn"

var registryAddr = common.HexToAddress("0x50C1a15050C1a15050C1a15050C1a15050C1a150")

type fakeContent struct {
	pinned []json.RawMessage
}

func (f *fakeContent) PinJSON(_ context.Context, _ string, doc interface{}) (string, error) {
	raw, _ := json.Marshal(doc)
	f.pinned = append(f.pinned, raw)
	return testCID, nil
}

func (f *fakeContent) FetchRaw(_ context.Context, cid string) ([]byte, error) {
	return []byte(`{"title":"hello"}`), nil
}

type testEnv struct {
	router  *gin.Engine
	tree    *merkle.Tree
	owner   *ecdsa.PrivateKey
	member  *ecdsa.PrivateKey
	outside *ecdsa.PrivateKey
	content *fakeContent
	lastTS  int64
}

func addr(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	led := ledger.New(store, nil, nil)
	svc := social.NewService(led, registryAddr, nil)

	env := &testEnv{content: &fakeContent{}}
	for _, k := range []**ecdsa.PrivateKey{&env.owner, &env.member, &env.outside} {
		*k, err = crypto.GenerateKey()
		require.NoError(t, err)
	}
	env.tree, err = merkle.NewAddressTree([]common.Address{addr(env.owner), addr(env.member)})
	require.NoError(t, err)

	opts := apiconfig.New(nil).GetOptions()
	opts.ReadRateLimit, opts.WriteRateLimit = 0, 0
	reg := prometheus.NewRegistry()
	env.router = NewRouter(RouterDeps{
		Options:    opts,
		Social:     svc,
		History:    history.NewService(led, svc, nil),
		Content:    env.content,
		Ledger:     led,
		Registerer: reg,
		Gatherer:   reg,
		Version:    "test",
	})
	return env
}

func (e *testEnv) proof(t *testing.T, key *ecdsa.PrivateKey) []string {
	t.Helper()
	p, err := e.tree.AddressProof(addr(key))
	require.NoError(t, err)
	out := make([]string, len(p))
	for i, h := range p {
		out[i] = h.Hex()
	}
	return out
}

// nextTimestamp 递增的签名时间戳，相同请求不会被当作重放
func (e *testEnv) nextTimestamp() int64 {
	ts := time.Now().Unix()
	if ts <= e.lastTS {
		ts = e.lastTS + 1
	}
	e.lastTS = ts
	return ts
}

// signedRequest 构造已签名的请求
func (e *testEnv) signedRequest(t *testing.T, key *ecdsa.PrivateKey, method, path string, raw []byte) *http.Request {
	t.Helper()
	ts := e.nextTimestamp()
	sig, err := signature.SignRequest(key, method, path, ts, raw)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signature.HeaderAddress, addr(key).Hex())
	req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(signature.HeaderSignature, sig)
	return req
}

// do 发送请求，key 不为 nil 时按请求签名规则签名
func (e *testEnv) do(t *testing.T, key *ecdsa.PrivateKey, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	var req *http.Request
	if key != nil {
		req = e.signedRequest(t, key, method, path, raw)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createProject(t *testing.T) {
	t.Helper()
	rec := e.do(t, e.owner, http.MethodPost, "/api/v1/projects", gin.H{
		"name": "Simplon",
		"slug": "simplon",
		"root": e.tree.Root().Hex(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

type successBody struct {
	Data json.RawMessage `json:"data"`
	Seq  uint64          `json:"seq"`
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) uint64 {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if out != nil {
		require.NoError(t, json.Unmarshal(body.Data, out))
	}
	return body.Seq
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apitypes.ProblemDetails {
	t.Helper()
	var pd apitypes.ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pd), rec.Body.String())
	return pd
}

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t)

	var project types.Project
	decodeSuccess(t, env.do(t, nil, http.MethodGet, "/api/v1/projects/simplon", nil), &project)
	assert.Equal(t, "Simplon", project.Name)
	assert.Equal(t, addr(env.owner), project.Owner)

	rec := env.do(t, env.owner, http.MethodPost, "/api/v1/projects", gin.H{"name": "Other", "slug": "simplon"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SlugNameAlreadyExist", decodeProblem(t, rec).Code)
}

func TestSignatureRejections(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		build  func() *http.Request
		status int
		code   string
	}{
		{
			name: "缺少签名头",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(`{"name":"a","slug":"a"}`))
			},
			status: http.StatusUnauthorized,
			code:   apitypes.CodeAuthMissingHeaders,
		},
		{
			name: "签名与请求体不符",
			build: func() *http.Request {
				ts := time.Now().Unix()
				sig, _ := signature.SignRequest(env.owner, http.MethodPost, "/api/v1/projects", ts, []byte(`{"name":"a","slug":"a"}`))
				req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(`{"name":"b","slug":"b"}`))
				req.Header.Set(signature.HeaderAddress, addr(env.owner).Hex())
				req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(ts, 10))
				req.Header.Set(signature.HeaderSignature, sig)
				return req
			},
			status: http.StatusUnauthorized,
			code:   apitypes.CodeAuthInvalidSignature,
		},
		{
			name: "时间戳过期",
			build: func() *http.Request {
				ts := time.Now().Add(-time.Hour).Unix()
				body := []byte(`{"name":"a","slug":"a"}`)
				sig, _ := signature.SignRequest(env.owner, http.MethodPost, "/api/v1/projects", ts, body)
				req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewReader(body))
				req.Header.Set(signature.HeaderAddress, addr(env.owner).Hex())
				req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(ts, 10))
				req.Header.Set(signature.HeaderSignature, sig)
				return req
			},
			status: http.StatusUnauthorized,
			code:   apitypes.CodeAuthTimestampSkew,
		},
		{
			name: "请求体带私钥",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(`{"name":"a","slug":"a","private_key":"0x01"}`))
			},
			status: http.StatusForbidden,
			code:   apitypes.CodePrivateKeyForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, tt.build())
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeProblem(t, rec).Code)
		})
	}
}

func TestFollowFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t)
	owner := addr(env.owner).Hex()

	// 非成员被拒绝
	rec := env.do(t, env.outside, http.MethodPost, "/api/v1/projects/simplon/follow", gin.H{"user": owner, "proof": env.proof(t, env.member)})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "OnlyUser", decodeProblem(t, rec).Code)

	rec = env.do(t, env.member, http.MethodPost, "/api/v1/projects/simplon/follow", gin.H{"user": owner, "proof": env.proof(t, env.member)})
	seq := decodeSuccess(t, rec, nil)
	assert.NotZero(t, seq)

	rec = env.do(t, env.member, http.MethodPost, "/api/v1/projects/simplon/follow", gin.H{"user": owner, "proof": env.proof(t, env.member)})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AlreadyFollowed", decodeProblem(t, rec).Code)

	var following struct {
		Following bool `json:"following"`
	}
	decodeSuccess(t, env.do(t, nil, http.MethodGet, "/api/v1/projects/simplon/following/"+addr(env.member).Hex()+"/"+owner, nil), &following)
	assert.True(t, following.Following)

	var list []common.Address
	decodeSuccess(t, env.do(t, nil, http.MethodGet, "/api/v1/projects/simplon/users/"+addr(env.member).Hex()+"/following", nil), &list)
	assert.Equal(t, []common.Address{addr(env.owner)}, list)
}

func TestArticleFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t)
	author := addr(env.owner).Hex()

	rec := env.do(t, env.owner, http.MethodPost, "/api/v1/projects/simplon/articles", gin.H{"cid": testCID, "proof": env.proof(t, env.owner)})
	decodeSuccess(t, rec, nil)

	// 门控读取需要签名，证明走查询参数
	path := "/api/v1/projects/simplon/users/" + author + "/articles/last?proof=" + strings.Join(env.proof(t, env.member), ",")
	var pointer struct {
		Hex string `json:"hex"`
		CID string `json:"cid"`
	}
	decodeSuccess(t, env.do(t, env.member, http.MethodGet, path, nil), &pointer)
	assert.Equal(t, testCID, pointer.CID)

	rec = env.do(t, nil, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var page struct {
		Data []*types.LogEntry `json:"data"`
	}
	rec = env.do(t, nil, http.MethodGet, "/api/v1/projects/simplon/users/"+author+"/articles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, types.EventArticlePosted, page.Data[0].Name)
}

func TestServiceToggle(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t)

	rec := env.do(t, env.member, http.MethodPost, "/api/v1/projects/simplon/services/toggle", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "OwnableUnauthorizedAccount", decodeProblem(t, rec).Code)

	decodeSuccess(t, env.do(t, env.owner, http.MethodPost, "/api/v1/projects/simplon/services/toggle/1", nil), nil)

	var state struct {
		Active bool `json:"active"`
	}
	decodeSuccess(t, env.do(t, nil, http.MethodGet, "/api/v1/projects/simplon/services/1", nil), &state)
	assert.False(t, state.Active)

	rec = env.do(t, env.member, http.MethodPost, "/api/v1/projects/simplon/messages", gin.H{
		"cid": testCID, "to": addr(env.owner).Hex(), "proof": env.proof(t, env.member),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "OnlyService", decodeProblem(t, rec).Code)
}

func TestSignedRequestReplay(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t)

	const path = "/api/v1/projects/simplon/services/toggle"
	original := env.signedRequest(t, env.owner, http.MethodPost, path, nil)
	resend := func(sig string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		for _, h := range []string{signature.HeaderAddress, signature.HeaderTimestamp} {
			req.Header.Set(h, original.Header.Get(h))
		}
		req.Header.Set(signature.HeaderSignature, sig)
		return req
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, resend(original.Header.Get(signature.HeaderSignature)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name string
		sig  func() string
	}{
		{"原样重发", func() string { return original.Header.Get(signature.HeaderSignature) }},
		{"改写 s 值后重发", func() string {
			// (r, N-s, 翻转 v) 对同一摘要同样有效
			sig := hexutil.MustDecode(original.Header.Get(signature.HeaderSignature))
			s := new(big.Int).SetBytes(sig[32:64])
			s.Sub(crypto.S256().Params().N, s)
			s.FillBytes(sig[32:64])
			sig[crypto.RecoveryIDOffset] = 55 - sig[crypto.RecoveryIDOffset] // 27 <-> 28
			return hexutil.Encode(sig)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, resend(tt.sig()))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apitypes.CodeAuthReplay, decodeProblem(t, rec).Code)
		})
	}

	var state struct {
		Active bool `json:"active"`
	}
	decodeSuccess(t, env.do(t, nil, http.MethodGet, "/api/v1/projects/simplon/services/0", nil), &state)
	assert.False(t, state.Active)
}

func TestProjectNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, nil, http.MethodGet, "/api/v1/projects/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ProjectNotFound", decodeProblem(t, rec).Code)
}

func TestLogsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t)

	var logs []*types.LogEntry
	decodeSuccess(t, env.do(t, nil, http.MethodGet, "/api/v1/logs?name="+types.EventCreate, nil), &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "simplon", logs[0].Data["slug"])

	rec := env.do(t, nil, http.MethodGet, "/api/v1/logs?from_seq=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var pinned struct {
		CID string `json:"cid"`
		Hex string `json:"hex"`
	}
	rec := env.do(t, env.member, http.MethodPost, "/api/v1/content", gin.H{
		"kind":     "article",
		"document": gin.H{"title": "hello", "content": "world"},
	})
	decodeSuccess(t, rec, &pinned)
	assert.Equal(t, testCID, pinned.CID)
	digest, err := content.FromCID(testCID)
	require.NoError(t, err)
	assert.Equal(t, digest.Hex(), pinned.Hex)
	require.Len(t, env.content.pinned, 1)

	rec = env.do(t, env.member, http.MethodPost, "/api/v1/content", gin.H{"kind": "video", "document": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var decoded map[string]string
	decodeSuccess(t, env.do(t, nil, http.MethodGet, "/api/v1/cid/"+digest.Hex(), nil), &decoded)
	assert.Equal(t, testCID, decoded["cid"])

	rec = env.do(t, nil, http.MethodGet, "/api/v1/content/"+testCID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"hello"}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.createProject(t)

	rec := env.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = env.do(t, nil, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "social_api_requests_total")
}

func TestServer_StartStop(t *testing.T) {
	opts := apiconfig.New(nil).GetOptions()
	opts.HTTPPort = 0
	srv := NewServer(gin.New(), opts, infralog.NewFromZap(zaptest.NewLogger(t)))

	require.NoError(t, srv.Start())
	assert.NotEmpty(t, srv.Addr())
	require.NoError(t, srv.Stop(context.Background()))
}
