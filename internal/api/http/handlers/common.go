// Package handlers 提供社交网络 HTTP API 处理器
//
// 写操作与带成员门控的读操作都经过签名中间件，调用者地址取自签名恢复结果；
// 合约回滚通过 c.Error 交给错误处理中间件渲染为 Problem Details。
package handlers

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/weisyn/socialmaker/internal/api/http/middleware"
	httptypes "github.com/weisyn/socialmaker/internal/api/http/types"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/pkg/types"
)

// proofRequest 仅携带 Merkle 证明的请求体
type proofRequest struct {
	Proof []string `json:"proof"`
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, apitypes.BadRequest(apitypes.CodeInvalidAddress, "invalid address: "+s)
	}
	return common.HexToAddress(s), nil
}

func parseAddresses(list []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(list))
	for _, s := range list {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// parseHash 解析 0x 前缀的 32 字节哈希，空串返回零值
func parseHash(s string) (common.Hash, error) {
	if s == "" {
		return common.Hash{}, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, apitypes.BadRequest(apitypes.CodeInvalidProof, "invalid 32-byte hash: "+s)
	}
	return common.BytesToHash(b), nil
}

// parsePointer 解析 CID 或十六进制内容指针
func parsePointer(s string) (common.Hash, error) {
	if s == "" {
		return common.Hash{}, apitypes.BadRequest(apitypes.CodeInvalidCID, "missing content pointer")
	}
	h, err := content.Parse(s)
	if err != nil {
		return common.Hash{}, apitypes.BadRequest(apitypes.CodeInvalidCID, err.Error())
	}
	return h, nil
}

func parseProof(list []string) (types.Proof, error) {
	proof := make(types.Proof, 0, len(list))
	for _, s := range list {
		h, err := parseHash(s)
		if err != nil {
			return nil, err
		}
		proof = append(proof, h)
	}
	return proof, nil
}

// queryProof 查询参数中的证明，支持 proof=a&proof=b 与 proof=a,b 两种写法
func queryProof(c *gin.Context) (types.Proof, error) {
	var parts []string
	for _, v := range c.QueryArray("proof") {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	return parseProof(parts)
}

func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apitypes.BadRequest(apitypes.CodeInvalidBody, err.Error())
	}
	return nil
}

// authCaller 签名中间件认证过的调用者
func authCaller(c *gin.Context) (common.Address, error) {
	addr, ok := middleware.CallerFrom(c)
	if !ok {
		return common.Address{}, apitypes.NewProblemDetails(
			apitypes.CodeAuthMissingHeaders, apitypes.LayerGateway,
			"该操作需要签名认证", "", http.StatusUnauthorized, nil)
	}
	return addr, nil
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func respond(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, httptypes.NewSuccessResponse(data).
		WithRequestID(middleware.GetRequestID(c)).
		WithSeq(middleware.SeqFrom(c)))
}

// respondReceipt 写操作成功响应，序号取回执中最后一条日志
func respondReceipt(c *gin.Context, r *types.Receipt) {
	resp := httptypes.NewSuccessResponse(httptypes.NewReceiptResponse(r)).
		WithRequestID(middleware.GetRequestID(c))
	if r != nil && len(r.Logs) > 0 {
		resp.WithSeq(r.Logs[len(r.Logs)-1].Seq)
	}
	c.JSON(http.StatusOK, resp)
}

func paginated(c *gin.Context, items []*types.LogEntry) {
	page := httptypes.DefaultPagination()
	if err := c.ShouldBindQuery(page); err != nil {
		fail(c, apitypes.BadRequest(apitypes.CodeCommonValidationError, err.Error()))
		return
	}
	resp := httptypes.Paginate(items, page)
	resp.Seq = middleware.SeqFrom(c)
	c.JSON(http.StatusOK, resp)
}
