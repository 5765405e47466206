package handlers

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	httptypes "github.com/weisyn/socialmaker/internal/api/http/types"
	"github.com/weisyn/socialmaker/pkg/types"
)

// pointerRequest 携带内容指针（CID 或十六进制）与证明
type pointerRequest struct {
	CID   string   `json:"cid" binding:"required"`
	Proof []string `json:"proof"`
}

type followRequest struct {
	User  string   `json:"user" binding:"required"`
	Proof []string `json:"proof"`
}

// PostArticle 发布文章指针
func (h *SocialHandlers) PostArticle(c *gin.Context) {
	h.pointerAction(c, h.social.PostArticle)
}

// PostComment 在文章下发布评论指针
func (h *SocialHandlers) PostComment(c *gin.Context) {
	article, err := parsePointer(c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	h.pointerAction(c, func(ctx context.Context, slug string, me common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error) {
		return h.social.PostComment(ctx, slug, me, article, cid, proof)
	})
}

// Like 点赞
func (h *SocialHandlers) Like(c *gin.Context) { h.pointerAction(c, h.social.Like) }

// Unlike 取消点赞
func (h *SocialHandlers) Unlike(c *gin.Context) { h.pointerAction(c, h.social.Unlike) }

// Pin 置顶
func (h *SocialHandlers) Pin(c *gin.Context) { h.pointerAction(c, h.social.Pin) }

// Unpin 取消置顶
func (h *SocialHandlers) Unpin(c *gin.Context) { h.pointerAction(c, h.social.Unpin) }

// Follow 关注
func (h *SocialHandlers) Follow(c *gin.Context) { h.followAction(c, h.social.Follow) }

// Unfollow 取消关注
func (h *SocialHandlers) Unfollow(c *gin.Context) { h.followAction(c, h.social.Unfollow) }

func (h *SocialHandlers) pointerAction(c *gin.Context, call func(ctx context.Context, slug string, me common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error)) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req pointerRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	cid, err := parsePointer(req.CID)
	if err != nil {
		fail(c, err)
		return
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := call(c.Request.Context(), c.Param("slug"), me, cid, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

func (h *SocialHandlers) followAction(c *gin.Context, call func(ctx context.Context, slug string, me, user common.Address, proof types.Proof) (*types.Receipt, error)) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req followRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	user, err := parseAddress(req.User)
	if err != nil {
		fail(c, err)
		return
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := call(c.Request.Context(), c.Param("slug"), me, user, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

// GetLastArticleFrom 用户最新文章指针，调用者须为成员且服务开启
func (h *SocialHandlers) GetLastArticleFrom(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	user, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	proof, err := queryProof(c)
	if err != nil {
		fail(c, err)
		return
	}
	cid, err := h.social.GetLastArticleFrom(c.Request.Context(), c.Param("slug"), me, user, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, httptypes.NewPointer(cid))
}

// GetLastCommentByArticle 文章最新评论指针，调用者须为成员且服务开启
func (h *SocialHandlers) GetLastCommentByArticle(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	article, err := parsePointer(c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	proof, err := queryProof(c)
	if err != nil {
		fail(c, err)
		return
	}
	cid, err := h.social.GetLastCommentByArticle(c.Request.Context(), c.Param("slug"), me, article, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, httptypes.NewPointer(cid))
}

// GetMyLastArticle 调用者自己的最新文章指针
func (h *SocialHandlers) GetMyLastArticle(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	cid, err := h.social.GetMyLastArticle(c.Request.Context(), c.Param("slug"), me)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, httptypes.NewPointer(cid))
}

// IsFollowing a 是否关注 b
func (h *SocialHandlers) IsFollowing(c *gin.Context) {
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
	following, err := h.social.IsFollowing(c.Request.Context(), c.Param("slug"), a, b)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"following": following})
}

// IsLiked 用户是否点赞内容
func (h *SocialHandlers) IsLiked(c *gin.Context) {
	h.relationQuery(c, "liked", h.social.IsLiked)
}

// IsPinned 用户是否置顶内容
func (h *SocialHandlers) IsPinned(c *gin.Context) {
	h.relationQuery(c, "pinned", h.social.IsPinned)
}

func (h *SocialHandlers) relationQuery(c *gin.Context, field string, query func(ctx context.Context, slug string, cid common.Hash, user common.Address) (bool, error)) {
	cid, err := parsePointer(c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	user, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	set, err := query(c.Request.Context(), c.Param("slug"), cid, user)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{field: set})
}
