// Package types 定义 HTTP 响应结构
package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/pkg/types"
)

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	Seq       uint64      `json:"seq"` // 查询或提交时账本的最后日志序号
	RequestID string      `json:"requestId,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// WithSeq 添加账本序号锚点
func (r *SuccessResponse) WithSeq(seq uint64) *SuccessResponse {
	r.Seq = seq
	return r
}

// Pointer 内容指针的两种表示
type Pointer struct {
	Hex string `json:"hex"`
	CID string `json:"cid"`
}

// NewPointer 由 32 字节摘要创建指针，零值表示空
func NewPointer(h common.Hash) *Pointer {
	if h == (common.Hash{}) {
		return &Pointer{Hex: h.Hex()}
	}
	return &Pointer{Hex: h.Hex(), CID: content.ToCIDv0(h)}
}

// ReceiptResponse 写操作回执
type ReceiptResponse struct {
	Call string            `json:"call"`
	Logs []*types.LogEntry `json:"logs"`
}

// NewReceiptResponse 由回执创建响应
func NewReceiptResponse(r *types.Receipt) *ReceiptResponse {
	if r == nil {
		return &ReceiptResponse{Logs: []*types.LogEntry{}}
	}
	logs := r.Logs
	if logs == nil {
		logs = []*types.LogEntry{}
	}
	return &ReceiptResponse{Call: r.Call, Logs: logs}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string                 `json:"status"` // healthy, unhealthy
	Version    string                 `json:"version"`
	Uptime     string                 `json:"uptime"`
	Timestamp  string                 `json:"timestamp"`
	Components map[string]interface{} `json:"components"`
}
