package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/weisyn/socialmaker/pkg/types"
)

// ErrNoSigner 需要签名的请求未配置私钥
var ErrNoSigner = errors.New("client: signer key required for this call")

// APIError 服务端返回的错误（Problem Details）
type APIError struct {
	Status      int                    `json:"status"`
	Code        string                 `json:"code"`
	Layer       string                 `json:"layer"`
	Title       string                 `json:"title"`
	Detail      string                 `json:"detail"`
	UserMessage string                 `json:"userMessage"`
	TraceID     string                 `json:"traceId"`
	Details     map[string]interface{} `json:"details"`

	// Revert 合约回滚，非回滚错误时为 nil
	Revert *types.RevertError `json:"-"`
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	if e.Revert != nil {
		return fmt.Sprintf("http %d: revert %s", e.Status, e.Revert.Error())
	}
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s: %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Code)
}

// Unwrap 暴露回滚错误，使 errors.Is(err, types.ErrOnlyUser) 成立
func (e *APIError) Unwrap() error {
	if e.Revert == nil {
		return nil
	}
	return e.Revert
}

// decodeError 解析错误响应体，无法解析时保留原文
func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(status)
		apiErr.Detail = string(body)
		return apiErr
	}
	apiErr.Status = status

	if name, ok := apiErr.Details["revert"].(string); ok && name != "" {
		revert := &types.RevertError{Name: name}
		if args, ok := apiErr.Details["args"].([]interface{}); ok {
			for _, a := range args {
				revert.Args = append(revert.Args, fmt.Sprint(a))
			}
		}
		apiErr.Revert = revert
	} else if apiErr.Layer == "contract" {
		apiErr.Revert = types.ParseRevert(apiErr.Detail)
	}
	return apiErr
}
