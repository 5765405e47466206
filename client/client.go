// Package client 社交网络节点 HTTP API 的 Go 客户端
//
// 写操作与带成员门控的读操作在本地用私钥签名，私钥从不离开客户端；
// 服务端返回的 Problem Details 会还原成 *types.RevertError，可直接用 errors.Is 判断。
package client

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/signature"
)

const defaultTimeout = 30 * time.Second

// Client 节点 API 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	key        *ecdsa.PrivateKey
	now        func() time.Time

	// 服务端拒绝窗口内重复的签名请求，同一秒内的相同调用需要不同的时间戳
	tsMu   sync.Mutex
	lastTS int64
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithSigner 设置签名私钥，调用者地址由私钥推导
func WithSigner(key *ecdsa.PrivateKey) Option {
	return func(c *Client) {
		c.key = key
	}
}

// New 创建客户端，baseURL 形如 http://localhost:8680
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address 签名者地址，未设置私钥时为零地址
func (c *Client) Address() common.Address {
	if c.key == nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(c.key.PublicKey)
}

// envelope 成功响应外层
type envelope struct {
	Data json.RawMessage `json:"data"`
	Seq  uint64          `json:"seq"`
}

// call 发送请求，signed 为 true 时附加签名头；返回响应中的账本序号
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, result interface{}, signed bool) (uint64, error) {
	raw, err := c.callRaw(ctx, method, path, query, body, signed)
	if err != nil {
		return 0, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return env.Seq, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Seq, nil
}

// callRaw 发送请求并返回原始响应体
func (c *Client) callRaw(ctx context.Context, method, path string, query url.Values, body interface{}, signed bool) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
	}

	requestURI := path
	if len(query) > 0 {
		requestURI += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestURI, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if signed {
		if err := c.sign(req, payload); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) sign(req *http.Request, payload []byte) error {
	if c.key == nil {
		return ErrNoSigner
	}
	ts := c.nextTimestamp()
	sig, err := signature.SignRequest(c.key, req.Method, req.URL.RequestURI(), ts, payload)
	if err != nil {
		return err
	}
	req.Header.Set(signature.HeaderAddress, c.Address().Hex())
	req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(signature.HeaderSignature, sig)
	return nil
}

// nextTimestamp 单调递增的签名时间戳
func (c *Client) nextTimestamp() int64 {
	c.tsMu.Lock()
	defer c.tsMu.Unlock()
	ts := c.now().Unix()
	if ts <= c.lastTS {
		ts = c.lastTS + 1
	}
	c.lastTS = ts
	return ts
}
