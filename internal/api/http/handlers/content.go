package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	"github.com/weisyn/socialmaker/internal/core/ipfs"
	"github.com/weisyn/socialmaker/internal/core/social/content"
)

// ContentStore 链下文档固定与读取
type ContentStore interface {
	PinJSON(ctx context.Context, name string, doc interface{}) (string, error)
	FetchRaw(ctx context.Context, cid string) ([]byte, error)
}

// ContentHandlers 内容指针与链下文档 API 处理器
type ContentHandlers struct {
	store ContentStore
}

// NewContentHandlers 创建内容 API 处理器，store 可为 nil（仅提供指针编解码）
func NewContentHandlers(store ContentStore) *ContentHandlers {
	return &ContentHandlers{store: store}
}

// RegisterRoutes 注册路由
func (h *ContentHandlers) RegisterRoutes(public, signed *gin.RouterGroup) {
	public.GET("/cid/:value", h.DecodePointer)
	public.GET("/content/:cid", h.Fetch)
	signed.POST("/content", h.Pin)
}

// documentKinds 可选的文档结构校验
var documentKinds = map[string]func() interface{}{
	"person":  func() interface{} { return new(ipfs.Person) },
	"article": func() interface{} { return new(ipfs.Article) },
	"comment": func() interface{} { return new(ipfs.Comment) },
	"message": func() interface{} { return new(ipfs.Message) },
}

type pinRequest struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Document json.RawMessage `json:"document" binding:"required"`
}

// Pin 固定一份 JSON 文档，返回 CID 与上链用的十六进制指针
func (h *ContentHandlers) Pin(c *gin.Context) {
	if h.store == nil {
		fail(c, contentError(ipfs.ErrMissingJWT))
		return
	}
	var req pinRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if req.Kind != "" {
		newDoc, known := documentKinds[req.Kind]
		if !known {
			fail(c, apitypes.BadRequest(apitypes.CodeCommonValidationError, "unknown document kind: "+req.Kind))
			return
		}
		if err := json.Unmarshal(req.Document, newDoc()); err != nil {
			fail(c, apitypes.BadRequest(apitypes.CodeInvalidBody, fmt.Sprintf("document is not a valid %s: %v", req.Kind, err)))
			return
		}
	}

	cid, err := h.store.PinJSON(c.Request.Context(), req.Name, req.Document)
	if err != nil {
		fail(c, contentError(err))
		return
	}
	pointer, err := content.FromCID(cid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"cid": cid, "hex": pointer.Hex()})
}

// Fetch 经网关读取文档原文
func (h *ContentHandlers) Fetch(c *gin.Context) {
	if h.store == nil {
		fail(c, contentError(ipfs.ErrNotFound))
		return
	}
	pointer, err := parsePointer(c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	data, err := h.store.FetchRaw(c.Request.Context(), content.ToCIDv0(pointer))
	if err != nil {
		fail(c, contentError(err))
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// DecodePointer CID 与十六进制指针互转
func (h *ContentHandlers) DecodePointer(c *gin.Context) {
	pointer, err := parsePointer(c.Param("value"))
	if err != nil {
		fail(c, err)
		return
	}
	v1, err := content.ToCID(pointer)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"hex": pointer.Hex(), "cid": content.ToCIDv0(pointer), "cidv1": v1})
}

// contentError 固定服务与网关错误映射
func contentError(err error) error {
	var status *ipfs.StatusError
	switch {
	case errors.Is(err, ipfs.ErrMissingJWT):
		return apitypes.NewProblemDetails(apitypes.CodeCommonServiceUnavailable, apitypes.LayerGateway,
			"未配置内容固定服务", err.Error(), http.StatusServiceUnavailable, nil)
	case errors.Is(err, ipfs.ErrNotFound):
		return apitypes.NewProblemDetails(apitypes.CodeContentNotFound, apitypes.LayerGateway,
			"内容不存在", err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, ipfs.ErrTooLarge):
		return apitypes.NewProblemDetails(apitypes.CodeContentUnavailable, apitypes.LayerGateway,
			"内容超过读取上限", err.Error(), http.StatusBadGateway, nil)
	case errors.As(err, &status):
		return apitypes.NewProblemDetails(apitypes.CodeContentUnavailable, apitypes.LayerGateway,
			"内容服务暂不可用", err.Error(), http.StatusBadGateway,
			map[string]interface{}{"upstreamStatus": status.StatusCode})
	}
	return err
}
