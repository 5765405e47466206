package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/weisyn/socialmaker/pkg/types"
)

// ProblemDetails 错误响应结构（RFC7807 + 社交网络扩展）
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// 扩展字段
	Code        string                 `json:"code"`
	Layer       string                 `json:"layer"`
	UserMessage string                 `json:"userMessage"`
	Details     map[string]interface{} `json:"details,omitempty"`
	TraceID     string                 `json:"traceId"`
	Timestamp   string                 `json:"timestamp"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.UserMessage
}

// WriteJSON 将 Problem Details 写入 HTTP 响应
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewProblemDetails 创建新的 Problem Details
func NewProblemDetails(
	code string,
	layer string,
	userMessage string,
	detail string,
	status int,
	details map[string]interface{},
) *ProblemDetails {
	if details == nil {
		details = make(map[string]interface{})
	}

	return &ProblemDetails{
		Title:       http.StatusText(status),
		Code:        code,
		Layer:       layer,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      status,
		Details:     details,
		TraceID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	var pd *ProblemDetails
	if errors.As(err, &pd) {
		return pd, true
	}
	return nil, false
}

// FromRevert 合约回滚转换为 Problem Details
// 权限类回滚返回 403，其余返回 409，ProjectNotFound 返回 404；code 为回滚名称
func FromRevert(revert *types.RevertError) *ProblemDetails {
	status := http.StatusConflict
	switch {
	case types.IsPermissionRevert(revert):
		status = http.StatusForbidden
	case errors.Is(revert, types.ErrProjectNotFound):
		status = http.StatusNotFound
	case errors.Is(revert, types.ErrInvalidArgument):
		status = http.StatusBadRequest
	}

	details := map[string]interface{}{"revert": revert.Name}
	if len(revert.Args) > 0 {
		details["args"] = revert.Args
	}
	return NewProblemDetails(revert.Name, LayerContract, revert.UserMessage(), revert.Error(), status, details)
}

// FromError 任意错误转换为 Problem Details
func FromError(err error) *ProblemDetails {
	if pd, ok := IsProblemDetails(err); ok {
		return pd
	}
	if revert, ok := types.AsRevert(err); ok {
		return FromRevert(revert)
	}
	return NewProblemDetails(
		CodeCommonInternalError,
		LayerSocialService,
		"服务器内部错误，请稍后重试或联系管理员。",
		err.Error(),
		http.StatusInternalServerError,
		nil,
	)
}

// BadRequest 参数错误
func BadRequest(code, detail string) *ProblemDetails {
	return NewProblemDetails(code, LayerSocialService, "请求参数无效", detail, http.StatusBadRequest, nil)
}

// 错误码常量
const (
	// 请求认证
	CodeAuthMissingHeaders   = "AUTH_MISSING_HEADERS"
	CodeAuthInvalidSignature = "AUTH_INVALID_SIGNATURE"
	CodeAuthTimestampSkew    = "AUTH_TIMESTAMP_SKEW"
	CodeAuthReplay           = "AUTH_REPLAY"
	CodePrivateKeyForbidden  = "PRIVATE_KEY_FORBIDDEN"

	// 参数
	CodeInvalidAddress = "INVALID_ADDRESS"
	CodeInvalidCID     = "INVALID_CID"
	CodeInvalidProof   = "INVALID_PROOF"
	CodeInvalidBody    = "INVALID_BODY"

	// 内容
	CodeContentNotFound    = "CONTENT_NOT_FOUND"
	CodeContentUnavailable = "CONTENT_UNAVAILABLE"

	// 通用错误
	CodeCommonValidationError    = "COMMON_VALIDATION_ERROR"
	CodeCommonInternalError      = "COMMON_INTERNAL_ERROR"
	CodeCommonRateLimited        = "COMMON_RATE_LIMITED"
	CodeCommonServiceUnavailable = "COMMON_SERVICE_UNAVAILABLE"
)

// Layer 常量
const (
	LayerSocialService = "social-service"
	LayerContract      = "contract"
	LayerGateway       = "gateway"
)
