package handlers

import (
	"github.com/gin-gonic/gin"
	httptypes "github.com/weisyn/socialmaker/internal/api/http/types"
)

type messageRequest struct {
	CID   string   `json:"cid" binding:"required"`
	To    string   `json:"to" binding:"required"`
	Proof []string `json:"proof"`
}

// SendMessage 更新与对方会话的最新消息指针
func (h *SocialHandlers) SendMessage(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req messageRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	cid, err := parsePointer(req.CID)
	if err != nil {
		fail(c, err)
		return
	}
	to, err := parseAddress(req.To)
	if err != nil {
		fail(c, err)
		return
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.SendMessage(c.Request.Context(), c.Param("slug"), me, cid, to, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

// GetCurrentCID 与对方会话的最新消息指针
func (h *SocialHandlers) GetCurrentCID(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	to, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	proof, err := queryProof(c)
	if err != nil {
		fail(c, err)
		return
	}
	cid, err := h.social.GetCurrentCID(c.Request.Context(), c.Param("slug"), me, to, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, httptypes.NewPointer(cid))
}

// BurnChat 清空与对方会话的指针，请求体可省略
func (h *SocialHandlers) BurnChat(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	to, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	var req proofRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			fail(c, err)
			return
		}
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.BurnChat(c.Request.Context(), c.Param("slug"), me, to, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}
