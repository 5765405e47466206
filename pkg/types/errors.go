package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// RevertError 合约调用回滚错误
// Name 为回滚原因名称（与 ABI 中的自定义错误同名），Args 为可选参数
type RevertError struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// Error 实现 error 接口，格式为 Name 或 Name(arg1, arg2)
func (e *RevertError) Error() string {
	if len(e.Args) == 0 {
		return e.Name
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(e.Args, ", "))
}

// Is 按名称匹配，使 errors.Is(err, ErrOnlyUser) 忽略参数差异
func (e *RevertError) Is(target error) bool {
	t, ok := target.(*RevertError)
	return ok && t.Name == e.Name
}

// 回滚错误哨兵
var (
	ErrOnlyUser                   = &RevertError{Name: "OnlyUser"}
	ErrOnlyService                = &RevertError{Name: "OnlyService"}
	ErrOnlyAdmin                  = &RevertError{Name: "OnlyAdmin"}
	ErrOwnableUnauthorizedAccount = &RevertError{Name: "OwnableUnauthorizedAccount"}
	ErrSlugNameAlreadyExist       = &RevertError{Name: "SlugNameAlreadyExist"}
	ErrAlreadyFollowed            = &RevertError{Name: "AlreadyFollowed"}
	ErrAlreadyUnfollowed          = &RevertError{Name: "AlreadyUnfollowed"}
	ErrAlreadyLiked               = &RevertError{Name: "AlreadyLiked"}
	ErrAlreadyUnliked             = &RevertError{Name: "AlreadyUnliked"}
	ErrAlreadyPinned              = &RevertError{Name: "AlreadyPinned"}
	ErrAlreadyUnpinned            = &RevertError{Name: "AlreadyUnpinned"}
	ErrProjectNotFound            = &RevertError{Name: "ProjectNotFound"}
	ErrInvalidArgument            = &RevertError{Name: "InvalidArgument"}
)

// OwnableUnauthorizedAccount 非所有者调用 onlyOwner 方法
func OwnableUnauthorizedAccount(account common.Address) *RevertError {
	return &RevertError{Name: ErrOwnableUnauthorizedAccount.Name, Args: []string{account.Hex()}}
}

// InvalidArgument 参数校验失败
func InvalidArgument(reason string) *RevertError {
	return &RevertError{Name: ErrInvalidArgument.Name, Args: []string{reason}}
}

// AsRevert 提取错误链中的回滚错误
func AsRevert(err error) (*RevertError, bool) {
	var revert *RevertError
	if errors.As(err, &revert) {
		return revert, true
	}
	return nil, false
}

// IsPermissionRevert 权限类回滚（成员、服务开关、管理员、所有者）
func IsPermissionRevert(err error) bool {
	return errors.Is(err, ErrOnlyUser) ||
		errors.Is(err, ErrOnlyService) ||
		errors.Is(err, ErrOnlyAdmin) ||
		errors.Is(err, ErrOwnableUnauthorizedAccount)
}

// revertMessages 回滚原因对应的用户可读提示
var revertMessages = map[string]string{
	"OnlyUser":                   "you are not a member of this network",
	"OnlyService":                "this service is currently disabled",
	"OnlyAdmin":                  "only the network admin can do this",
	"OwnableUnauthorizedAccount": "only the network owner can do this",
	"SlugNameAlreadyExist":       "this slug is already taken",
	"AlreadyFollowed":            "you already follow this user",
	"AlreadyUnfollowed":          "you do not follow this user",
	"AlreadyLiked":               "you already liked this",
	"AlreadyUnliked":             "you have not liked this",
	"AlreadyPinned":              "you already pinned this",
	"AlreadyUnpinned":            "you have not pinned this",
	"ProjectNotFound":            "no network with this slug",
	"InvalidArgument":            "invalid argument",
}

// UserMessage 回滚原因的简短可读描述，未知原因返回名称本身
func (e *RevertError) UserMessage() string {
	if msg, ok := revertMessages[e.Name]; ok {
		return msg
	}
	return e.Name
}

// ParseRevert 把 "Name" 或 "Name(a, b)" 解析回 RevertError，客户端用它还原服务端回滚
func ParseRevert(s string) *RevertError {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return &RevertError{Name: s}
	}
	revert := &RevertError{Name: s[:open]}
	if inner := s[open+1 : len(s)-1]; inner != "" {
		for _, arg := range strings.Split(inner, ",") {
			revert.Args = append(revert.Args, strings.TrimSpace(arg))
		}
	}
	return revert
}
