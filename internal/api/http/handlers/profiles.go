package handlers

import (
	"github.com/gin-gonic/gin"
)

type createProfileRequest struct {
	User string `json:"user" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type pseudoRequest struct {
	Pseudo string   `json:"pseudo"`
	Proof  []string `json:"proof"`
}

type statusRequest struct {
	Status *bool    `json:"status" binding:"required"`
	Proof  []string `json:"proof"`
}

// CreateProfile 所有者为用户创建资料
func (h *SocialHandlers) CreateProfile(c *gin.Context) {
	owner, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req createProfileRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	user, err := parseAddress(req.User)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.CreateProfile(c.Request.Context(), c.Param("slug"), owner, user, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

// UpdatePseudo 成员更新自己的昵称
func (h *SocialHandlers) UpdatePseudo(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req pseudoRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.UpdatePseudo(c.Request.Context(), c.Param("slug"), me, req.Pseudo, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

// UpdateStatus 成员更新自己的状态
func (h *SocialHandlers) UpdateStatus(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.UpdateStatus(c.Request.Context(), c.Param("slug"), me, *req.Status, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

// GetMyProfile 调用者自己的资料
func (h *SocialHandlers) GetMyProfile(c *gin.Context) {
	me, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	profile, err := h.social.GetMyProfile(c.Request.Context(), c.Param("slug"), me)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, profile)
}

// GetProfile 任意用户的资料，未创建时返回零值
func (h *SocialHandlers) GetProfile(c *gin.Context) {
	user, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	profile, err := h.social.GetProfile(c.Request.Context(), c.Param("slug"), user)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, profile)
}
