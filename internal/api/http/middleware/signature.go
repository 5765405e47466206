package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/signature"
	"go.uber.org/zap"
)

const contextKeyCaller = "caller"

// SignatureValidation 请求签名验证中间件
// 调用者身份只来自签名恢复出的地址，服务端从不接触私钥
type SignatureValidation struct {
	logger  *zap.Logger
	maxSkew time.Duration
	maxBody int64
	replay  *ReplayGuard
	now     func() time.Time
}

// NewSignatureValidation 创建签名验证中间件
func NewSignatureValidation(logger *zap.Logger, maxSkew time.Duration, maxBody int64) *SignatureValidation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignatureValidation{
		logger:  logger,
		maxSkew: maxSkew,
		maxBody: maxBody,
		replay:  NewReplayGuard(nil),
		now:     time.Now,
	}
}

// WithReplayGuard 使用指定的重放检查器，多个节点共享 Redis 时跨节点生效
func (m *SignatureValidation) WithReplayGuard(g *ReplayGuard) *SignatureValidation {
	if g != nil {
		m.replay = g
	}
	return m
}

// Middleware 返回Gin中间件
func (m *SignatureValidation) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := m.readBody(c.Request)
		if err != nil {
			WriteProblemDetails(c, apitypes.NewProblemDetails(
				apitypes.CodeInvalidBody, apitypes.LayerGateway,
				"请求体过大或无法读取", err.Error(), http.StatusRequestEntityTooLarge, nil))
			return
		}

		if containsPrivateKey(body) {
			m.logger.Warn("Request contains private key field - REJECTED",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			WriteProblemDetails(c, apitypes.NewProblemDetails(
				apitypes.CodePrivateKeyForbidden, apitypes.LayerGateway,
				"不接受私钥，请在客户端签名请求", "", http.StatusForbidden, nil))
			return
		}

		caller, problem := m.authenticate(c.Request, body)
		if problem != nil {
			m.logger.Debug("Signature verification failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("code", problem.Code),
				zap.String("detail", problem.Detail))
			WriteProblemDetails(c, problem)
			return
		}

		c.Set(contextKeyCaller, caller)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func (m *SignatureValidation) readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	limit := m.maxBody
	if limit <= 0 {
		limit = 1 << 20
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errors.New("request body exceeds limit")
	}
	return body, nil
}

func (m *SignatureValidation) authenticate(r *http.Request, body []byte) (common.Address, *apitypes.ProblemDetails) {
	addrHex := r.Header.Get(signature.HeaderAddress)
	tsRaw := r.Header.Get(signature.HeaderTimestamp)
	sigHex := r.Header.Get(signature.HeaderSignature)
	if addrHex == "" || tsRaw == "" || sigHex == "" {
		return common.Address{}, unauthorized(apitypes.CodeAuthMissingHeaders, "缺少签名请求头", "")
	}
	if !common.IsHexAddress(addrHex) {
		return common.Address{}, unauthorized(apitypes.CodeAuthInvalidSignature, "调用者地址无效", addrHex)
	}

	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return common.Address{}, unauthorized(apitypes.CodeAuthTimestampSkew, "时间戳格式无效", err.Error())
	}
	if m.maxSkew > 0 {
		skew := m.now().Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > m.maxSkew {
			return common.Address{}, unauthorized(apitypes.CodeAuthTimestampSkew, "请求时间戳超出允许偏差", skew.String())
		}
	}

	claimed := common.HexToAddress(addrHex)
	if err := signature.VerifyRequest(claimed, r.Method, r.URL.RequestURI(), ts, body, sigHex); err != nil {
		return common.Address{}, unauthorized(apitypes.CodeAuthInvalidSignature, "请求签名无效", err.Error())
	}

	// 按签名者与消息摘要登记，改写签名的 s 值也无法绕过
	key := claimed.Hex() + hexutil.Encode(signature.Digest(r.Method, r.URL.RequestURI(), ts, body))
	fresh, err := m.replay.Mark(r.Context(), key, m.replayTTL(ts))
	if err != nil {
		m.logger.Warn("Replay guard unavailable", zap.Error(err))
		return common.Address{}, apitypes.NewProblemDetails(apitypes.CodeCommonServiceUnavailable, apitypes.LayerGateway,
			"暂时无法校验请求", err.Error(), http.StatusServiceUnavailable, nil)
	}
	if !fresh {
		return common.Address{}, unauthorized(apitypes.CodeAuthReplay, "请求已被受理，不能重复提交", "")
	}
	return claimed, nil
}

// replayTTL 登记保留到该时间戳不再落在允许偏差内为止
func (m *SignatureValidation) replayTTL(ts int64) time.Duration {
	if m.maxSkew <= 0 {
		return defaultReplayWindow
	}
	ttl := time.Unix(ts, 0).Add(m.maxSkew).Sub(m.now()) + time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func unauthorized(code, userMessage, detail string) *apitypes.ProblemDetails {
	return apitypes.NewProblemDetails(code, apitypes.LayerGateway, userMessage, detail, http.StatusUnauthorized, nil)
}

// CallerFrom 已认证的调用者地址
func CallerFrom(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(contextKeyCaller)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}

// privateKeyFields 归一化（小写、去下划线和连字符）后的危险字段
var privateKeyFields = map[string]struct{}{
	"privatekey": {},
	"privkey":    {},
	"secretkey":  {},
	"mnemonic":   {},
	"seedphrase": {},
}

// containsPrivateKey 请求体顶层是否带有私钥类字段
func containsPrivateKey(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}
	for field := range data {
		normalized := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(field))
		if _, bad := privateKeyFields[normalized]; bad {
			return true
		}
	}
	return false
}
