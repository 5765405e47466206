package handlers

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	"github.com/weisyn/socialmaker/internal/core/ipfs"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/internal/core/social/history"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
	"github.com/weisyn/socialmaker/pkg/types"
)

// defaultChainLimit 消息链默认回溯深度
const defaultChainLimit = 50

// HistoryReader 基于事件日志的历史查询
type HistoryReader interface {
	socialiface.History
	Following(ctx context.Context, slug string, user common.Address) (map[common.Address]bool, error)
	ResolveMessageChain(ctx context.Context, cid string, limit int) ([]*ipfs.Message, error)
}

// HistoryHandlers 历史与日志 API 处理器
type HistoryHandlers struct {
	history HistoryReader
}

// NewHistoryHandlers 创建历史 API 处理器
func NewHistoryHandlers(history HistoryReader) *HistoryHandlers {
	return &HistoryHandlers{history: history}
}

// RegisterRoutes 注册路由
func (h *HistoryHandlers) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/logs", h.Logs)
	public.GET("/messages/:cid/chain", h.MessageChain)

	p := public.Group("/projects/:slug")
	p.GET("/users/:address/articles", h.ArticleHistory)
	p.GET("/users/:address/feed", h.Feed)
	p.GET("/users/:address/following", h.Following)
	p.GET("/articles/:cid/comments", h.Comments)
	p.GET("/conversations/:a/:b", h.Conversation)
}

// Logs 按条件查询事件日志
// 查询参数：contract、name、topic 可重复；from_seq、to_seq、limit
func (h *HistoryHandlers) Logs(c *gin.Context) {
	filter, err := apitypes.ParseLogFilter(c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	logs, err := h.history.Logs(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	if logs == nil {
		logs = []*types.LogEntry{}
	}
	respond(c, logs)
}

// ArticleHistory 作者文章历史，最新在前
func (h *HistoryHandlers) ArticleHistory(c *gin.Context) {
	author, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	logs, err := h.history.ArticleHistory(c.Request.Context(), c.Param("slug"), author)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, logs)
}

// Feed 用户当前关注对象的文章流，最新在前
func (h *HistoryHandlers) Feed(c *gin.Context) {
	user, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	logs, err := h.history.Feed(c.Request.Context(), c.Param("slug"), user)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, logs)
}

// Following 用户当前关注的地址，按地址排序
func (h *HistoryHandlers) Following(c *gin.Context) {
	user, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	set, err := h.history.Following(c.Request.Context(), c.Param("slug"), user)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]common.Address, 0, len(set))
	for addr, on := range set {
		if on {
			out = append(out, addr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	respond(c, out)
}

// Comments 文章评论历史，最新在前
func (h *HistoryHandlers) Comments(c *gin.Context) {
	article, err := parsePointer(c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	logs, err := h.history.Comments(c.Request.Context(), c.Param("slug"), article)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, logs)
}

// Conversation 两个地址自上次清空以来的消息日志
func (h *HistoryHandlers) Conversation(c *gin.Context) {
	a, err := parseAddress(c.Param("a"))
	if err != nil {
		fail(c, err)
		return
	}
	b, err := parseAddress(c.Param("b"))
	if err != nil {
		fail(c, err)
		return
	}
	logs, err := h.history.Conversation(c.Request.Context(), c.Param("slug"), a, b)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, logs)
}

// MessageChain 沿 parent 回溯链下消息文档，超过 limit 时返回已读取部分并标记 truncated
func (h *HistoryHandlers) MessageChain(c *gin.Context) {
	limit := defaultChainLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(c, apitypes.BadRequest(apitypes.CodeCommonValidationError, "invalid limit: "+raw))
			return
		}
		limit = n
	}
	pointer, err := parsePointer(c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	messages, err := h.history.ResolveMessageChain(c.Request.Context(), content.ToCIDv0(pointer), limit)
	truncated := errors.Is(err, history.ErrChainTooLong)
	if err != nil && !truncated {
		fail(c, contentError(err))
		return
	}
	if messages == nil {
		messages = []*ipfs.Message{}
	}
	respond(c, gin.H{"messages": messages, "truncated": truncated})
}
