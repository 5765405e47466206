// Package types 定义 WebSocket 日志订阅消息
package types

import (
	"encoding/json"

	"github.com/weisyn/socialmaker/pkg/types"
)

// 订阅方法名
const (
	MethodSubscribe    = "social_subscribe"
	MethodUnsubscribe  = "social_unsubscribe"
	MethodSubscription = "social_subscription"
)

// JSON-RPC 错误码
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32000
)

// Request 客户端请求（JSON-RPC 2.0 风格）
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response 请求响应
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error 错误对象
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SubscribeParams 订阅参数，FromSeq 之后（含）的历史日志先回放再推送实时日志
type SubscribeParams struct {
	Filter types.LogFilter `json:"filter"`
}

// Notification 推送给订阅者的消息
type Notification struct {
	JSONRPC string             `json:"jsonrpc"`
	Method  string             `json:"method"`
	Params  NotificationParams `json:"params"`
}

// NotificationParams 推送内容
type NotificationParams struct {
	Subscription string          `json:"subscription"`
	Result       *types.LogEntry `json:"result"`
	Replayed     bool            `json:"replayed,omitempty"` // 是否来自历史回放
}
