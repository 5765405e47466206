// Package ipfs 提供 Pinata 固定服务客户端与网关读取
//
// 上链指针与链下文档之间没有事务协调：指针可能引用固定失败的内容，
// 读取端因此对网关的临时失败做有限次退避重试。
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ipfsconfig "github.com/weisyn/socialmaker/internal/config/ipfs"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
)

// 错误定义
var (
	ErrMissingJWT = errors.New("未配置固定服务令牌")
	ErrNotFound   = errors.New("网关上不存在该内容")
	ErrTooLarge   = errors.New("文档超过读取上限")
)

// maxDocumentSize 单个文档读取上限
const maxDocumentSize = 4 << 20

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("上游返回 HTTP %d: %s", e.StatusCode, e.Body)
}

// temporary 5xx 与 429 可以重试
func (e *StatusError) temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client 固定服务客户端
type Client struct {
	opts       *ipfsconfig.IPFSOptions
	httpClient *http.Client
	cache      *DocumentCache
	logger     log.Logger
}

// NewClient 创建客户端，cache 可以为 nil
func NewClient(opts *ipfsconfig.IPFSOptions, cache *DocumentCache, logger log.Logger) *Client {
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache:  cache,
		logger: logger,
	}
}

type pinJSONRequest struct {
	PinataContent  interface{}       `json:"pinataContent"`
	PinataMetadata map[string]string `json:"pinataMetadata,omitempty"`
}

type pinJSONResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// PinJSON 固定 JSON 文档，返回 CID；文档字节同时写入缓存
func (c *Client) PinJSON(ctx context.Context, name string, doc interface{}) (string, error) {
	if c.opts.JWT == "" {
		return "", ErrMissingJWT
	}

	body, err := json.Marshal(pinJSONRequest{
		PinataContent:  doc,
		PinataMetadata: map[string]string{"name": name},
	})
	if err != nil {
		return "", fmt.Errorf("编码固定请求失败: %w", err)
	}

	url := strings.TrimRight(c.opts.PinningURL, "/") + "/pinning/pinJSONToIPFS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.JWT)

	data, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("固定文档失败: %w", err)
	}

	var resp pinJSONResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("解码固定响应失败: %w", err)
	}
	if resp.IpfsHash == "" {
		return "", fmt.Errorf("固定服务未返回 CID")
	}

	if raw, err := json.Marshal(doc); err == nil {
		if err := c.cache.Put(ctx, resp.IpfsHash, raw); err != nil && c.logger != nil {
			c.logger.Warnf("写入文档缓存失败: cid=%s, err=%v", resp.IpfsHash, err)
		}
	}
	if c.logger != nil {
		c.logger.Infof("文档已固定: name=%s, cid=%s", name, resp.IpfsHash)
	}
	return resp.IpfsHash, nil
}

// FetchRaw 读取文档字节，先查缓存，网关临时失败时按指数退避重试
func (c *Client) FetchRaw(ctx context.Context, cid string) ([]byte, error) {
	if data, ok := c.cache.Get(ctx, cid); ok {
		return data, nil
	}

	url := strings.TrimRight(c.opts.GatewayURL, "/") + "/" + cid
	backoff := c.opts.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("创建请求失败: %w", err)
		}
		data, err := c.do(req)
		if err == nil {
			if err := c.cache.Put(ctx, cid, data); err != nil && c.logger != nil {
				c.logger.Warnf("写入文档缓存失败: cid=%s, err=%v", cid, err)
			}
			return data, nil
		}

		if errors.Is(err, ErrTooLarge) {
			return nil, fmt.Errorf("%w: cid=%s", err, cid)
		}
		lastErr = err
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, cid)
			}
			if !statusErr.temporary() {
				return nil, err
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.logger != nil {
			c.logger.Debugf("网关读取失败，准备重试: cid=%s, attempt=%d, err=%v", cid, attempt+1, err)
		}
	}
	return nil, fmt.Errorf("读取文档失败（重试 %d 次）: %w", c.opts.MaxRetries, lastErr)
}

// Fetch 读取并解码文档
func (c *Client) Fetch(ctx context.Context, cid string, out interface{}) error {
	data, err := c.FetchRaw(ctx, cid)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解码文档失败: cid=%s: %w", cid, err)
	}
	return nil
}

// FetchMessage 读取私信文档
func (c *Client) FetchMessage(ctx context.Context, cid string) (*Message, error) {
	var msg Message
	if err := c.Fetch(ctx, cid, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logger != nil {
			c.logger.Warnf("关闭响应体失败: %v", err)
		}
	}()

	// 多读一个字节以区分恰好达到上限与超出上限
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxDocumentSize {
			data = data[:maxDocumentSize]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: > %d 字节", ErrTooLarge, maxDocumentSize)
	}
	return data, nil
}
