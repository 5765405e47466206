package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
	"github.com/weisyn/socialmaker/pkg/types"
)

// SocialHandlers 合约操作 API 处理器
type SocialHandlers struct {
	social socialiface.Service
	logger log.Logger
}

// NewSocialHandlers 创建合约操作 API 处理器
func NewSocialHandlers(social socialiface.Service, logger log.Logger) *SocialHandlers {
	return &SocialHandlers{social: social, logger: logger}
}

// RegisterRoutes 注册路由，signed 组上挂有签名中间件
func (h *SocialHandlers) RegisterRoutes(public, signed *gin.RouterGroup) {
	public.GET("/projects", h.ListProjects)
	signed.POST("/projects", h.CreateProject)

	p := public.Group("/projects/:slug")
	sp := signed.Group("/projects/:slug")

	// 注册表与访问控制
	p.GET("", h.GetProject)
	p.GET("/name", h.GetProjectName)
	p.GET("/members/:address", h.IsUser)
	p.GET("/services/:id", h.IsServiceActive)
	sp.POST("/members", h.AddMoreUser)
	sp.POST("/services/toggle", h.ToggleServices)
	sp.POST("/services/toggle/:id", h.ToggleService)

	// 用户资料
	p.GET("/profiles/:address", h.GetProfile)
	sp.POST("/profiles", h.CreateProfile)
	sp.GET("/me/profile", h.GetMyProfile)
	sp.PUT("/me/pseudo", h.UpdatePseudo)
	sp.PUT("/me/status", h.UpdateStatus)

	// 社交图谱
	p.GET("/following/:a/:b", h.IsFollowing)
	p.GET("/likes/:cid/:address", h.IsLiked)
	p.GET("/pins/:cid/:address", h.IsPinned)
	sp.POST("/articles", h.PostArticle)
	sp.POST("/articles/:cid/comments", h.PostComment)
	sp.GET("/articles/:cid/comments/last", h.GetLastCommentByArticle)
	sp.GET("/users/:address/articles/last", h.GetLastArticleFrom)
	sp.GET("/me/articles/last", h.GetMyLastArticle)
	sp.POST("/follow", h.Follow)
	sp.POST("/unfollow", h.Unfollow)
	sp.POST("/like", h.Like)
	sp.POST("/unlike", h.Unlike)
	sp.POST("/pin", h.Pin)
	sp.POST("/unpin", h.Unpin)

	// 私信
	sp.POST("/messages", h.SendMessage)
	sp.GET("/messages/:address/current", h.GetCurrentCID)
	sp.POST("/messages/:address/burn", h.BurnChat)
}

type createProjectRequest struct {
	Name  string   `json:"name" binding:"required"`
	Slug  string   `json:"slug" binding:"required"`
	Users []string `json:"users"`
	Root  string   `json:"root"`
}

// CreateProject 创建社交网络项目，调用者成为所有者与管理员
func (h *SocialHandlers) CreateProject(c *gin.Context) {
	owner, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req createProjectRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	users, err := parseAddresses(req.Users)
	if err != nil {
		fail(c, err)
		return
	}
	root, err := parseHash(req.Root)
	if err != nil {
		fail(c, err)
		return
	}

	project, r, err := h.social.Create(c.Request.Context(), owner, req.Name, req.Slug, users, root)
	if err != nil {
		fail(c, err)
		return
	}
	if h.logger != nil {
		h.logger.Infof("创建项目 %s（%s），所有者 %s", project.Slug, project.Name, owner.Hex())
	}
	respondReceipt(c, r)
}

// ListProjects 已创建的全部项目
func (h *SocialHandlers) ListProjects(c *gin.Context) {
	projects, err := h.social.ListProjects(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if projects == nil {
		projects = []*types.Project{}
	}
	respond(c, projects)
}

// GetProject 项目及其子合约地址
func (h *SocialHandlers) GetProject(c *gin.Context) {
	project, err := h.social.GetProject(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, project)
}

// GetProjectName 项目名称
func (h *SocialHandlers) GetProjectName(c *gin.Context) {
	name, err := h.social.GetProjectName(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"name": name})
}

// IsUser 地址是否为成员，证明通过 proof 查询参数传入
func (h *SocialHandlers) IsUser(c *gin.Context) {
	addr, err := parseAddress(c.Param("address"))
	if err != nil {
		fail(c, err)
		return
	}
	proof, err := queryProof(c)
	if err != nil {
		fail(c, err)
		return
	}
	member, err := h.social.IsUser(c.Request.Context(), c.Param("slug"), addr, proof)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"address": addr, "member": member})
}

func parseServiceID(s string) (types.ServiceID, error) {
	id, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, apitypes.BadRequest(apitypes.CodeCommonValidationError, "invalid service id: "+s)
	}
	return types.ServiceID(id), nil
}

// IsServiceActive 服务开关状态
func (h *SocialHandlers) IsServiceActive(c *gin.Context) {
	id, err := parseServiceID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	active, err := h.social.IsServiceActive(c.Request.Context(), c.Param("slug"), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"service": id.String(), "id": uint8(id), "active": active})
}

type addUsersRequest struct {
	Addresses []string `json:"addresses" binding:"required"`
	Root      string   `json:"root" binding:"required"`
}

// AddMoreUser 管理员替换成员根
func (h *SocialHandlers) AddMoreUser(c *gin.Context) {
	admin, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req addUsersRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	addrs, err := parseAddresses(req.Addresses)
	if err != nil {
		fail(c, err)
		return
	}
	root, err := parseHash(req.Root)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.AddMoreUser(c.Request.Context(), c.Param("slug"), admin, addrs, root)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

// ToggleServices 翻转全部服务开关
func (h *SocialHandlers) ToggleServices(c *gin.Context) {
	owner, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.ToggleServices(c.Request.Context(), c.Param("slug"), owner)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}

// ToggleService 翻转单个服务开关
func (h *SocialHandlers) ToggleService(c *gin.Context) {
	owner, err := authCaller(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := parseServiceID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	r, err := h.social.ToggleService(c.Request.Context(), c.Param("slug"), owner, id)
	if err != nil {
		fail(c, err)
		return
	}
	respondReceipt(c, r)
}
