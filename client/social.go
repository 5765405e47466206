package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/social/content"
	"github.com/weisyn/socialmaker/pkg/types"
)

const apiPrefix = "/api/v1"

// Receipt 写操作回执
type Receipt struct {
	Call string            `json:"call"`
	Logs []*types.LogEntry `json:"logs"`
	Seq  uint64            `json:"-"` // 最后一条日志的序号
}

// Pointer 内容指针的两种表示
type Pointer struct {
	Hex string `json:"hex"`
	CID string `json:"cid"`
}

// Hash 上链的 32 字节摘要
func (p Pointer) Hash() common.Hash {
	return common.HexToHash(p.Hex)
}

// Empty 是否为零指针
func (p Pointer) Empty() bool {
	return p.Hash() == (common.Hash{})
}

func projectPath(slug string, parts ...string) string {
	return apiPrefix + "/projects/" + url.PathEscape(slug) + strings.Join(parts, "")
}

func proofStrings(proof types.Proof) []string {
	out := make([]string, len(proof))
	for i, h := range proof {
		out[i] = h.Hex()
	}
	return out
}

func proofQuery(proof types.Proof) url.Values {
	if len(proof) == 0 {
		return nil
	}
	return url.Values{"proof": {strings.Join(proofStrings(proof), ",")}}
}

// pointerString 上链摘要转为 CIDv0 字符串
func pointerString(h common.Hash) string {
	return content.ToCIDv0(h)
}

func (c *Client) write(ctx context.Context, method, path string, body interface{}) (*Receipt, error) {
	var r Receipt
	seq, err := c.call(ctx, method, path, nil, body, &r, true)
	if err != nil {
		return nil, err
	}
	r.Seq = seq
	return &r, nil
}

// ===== 注册表与访问控制 =====

// CreateProject 创建网络，调用者成为所有者与管理员
func (c *Client) CreateProject(ctx context.Context, name, slug string, users []common.Address, root common.Hash) (*Receipt, error) {
	addrs := make([]string, len(users))
	for i, u := range users {
		addrs[i] = u.Hex()
	}
	return c.write(ctx, http.MethodPost, apiPrefix+"/projects", map[string]interface{}{
		"name": name, "slug": slug, "users": addrs, "root": root.Hex(),
	})
}

// ListProjects 全部网络
func (c *Client) ListProjects(ctx context.Context) ([]*types.Project, error) {
	var out []*types.Project
	_, err := c.call(ctx, http.MethodGet, apiPrefix+"/projects", nil, nil, &out, false)
	return out, err
}

// GetProject 按 slug 查询网络
func (c *Client) GetProject(ctx context.Context, slug string) (*types.Project, error) {
	var out types.Project
	if _, err := c.call(ctx, http.MethodGet, projectPath(slug), nil, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsUser 地址是否为成员
func (c *Client) IsUser(ctx context.Context, slug string, addr common.Address, proof types.Proof) (bool, error) {
	var out struct {
		Member bool `json:"member"`
	}
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/members/", addr.Hex()), proofQuery(proof), nil, &out, false)
	return out.Member, err
}

// IsServiceActive 服务开关状态
func (c *Client) IsServiceActive(ctx context.Context, slug string, id types.ServiceID) (bool, error) {
	var out struct {
		Active bool `json:"active"`
	}
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/services/", strconv.Itoa(int(id))), nil, nil, &out, false)
	return out.Active, err
}

// AddMoreUser 管理员替换成员根
func (c *Client) AddMoreUser(ctx context.Context, slug string, users []common.Address, root common.Hash) (*Receipt, error) {
	addrs := make([]string, len(users))
	for i, u := range users {
		addrs[i] = u.Hex()
	}
	return c.write(ctx, http.MethodPost, projectPath(slug, "/members"), map[string]interface{}{
		"addresses": addrs, "root": root.Hex(),
	})
}

// ToggleServices 翻转全部服务开关
func (c *Client) ToggleServices(ctx context.Context, slug string) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, projectPath(slug, "/services/toggle"), nil)
}

// ToggleService 翻转单个服务开关
func (c *Client) ToggleService(ctx context.Context, slug string, id types.ServiceID) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, projectPath(slug, "/services/toggle/", strconv.Itoa(int(id))), nil)
}

// ===== 用户资料 =====

// CreateProfile 管理员为用户设置名称
func (c *Client) CreateProfile(ctx context.Context, slug string, user common.Address, name string) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, projectPath(slug, "/profiles"), map[string]interface{}{
		"user": user.Hex(), "name": name,
	})
}

// UpdatePseudo 修改自己的昵称
func (c *Client) UpdatePseudo(ctx context.Context, slug, pseudo string, proof types.Proof) (*Receipt, error) {
	return c.write(ctx, http.MethodPut, projectPath(slug, "/me/pseudo"), map[string]interface{}{
		"pseudo": pseudo, "proof": proofStrings(proof),
	})
}

// UpdateStatus 修改自己的状态
func (c *Client) UpdateStatus(ctx context.Context, slug string, status bool, proof types.Proof) (*Receipt, error) {
	return c.write(ctx, http.MethodPut, projectPath(slug, "/me/status"), map[string]interface{}{
		"status": status, "proof": proofStrings(proof),
	})
}

// GetMyProfile 自己的资料
func (c *Client) GetMyProfile(ctx context.Context, slug string) (types.Profile, error) {
	var out types.Profile
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/me/profile"), nil, nil, &out, true)
	return out, err
}

// GetProfile 用户资料
func (c *Client) GetProfile(ctx context.Context, slug string, user common.Address) (types.Profile, error) {
	var out types.Profile
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/profiles/", user.Hex()), nil, nil, &out, false)
	return out, err
}

// ===== 社交图谱 =====

// PostArticle 发布文章指针
func (c *Client) PostArticle(ctx context.Context, slug string, cid common.Hash, proof types.Proof) (*Receipt, error) {
	return c.pointerWrite(ctx, projectPath(slug, "/articles"), cid, proof)
}

// PostComment 评论文章
func (c *Client) PostComment(ctx context.Context, slug string, article, cid common.Hash, proof types.Proof) (*Receipt, error) {
	return c.pointerWrite(ctx, projectPath(slug, "/articles/", pointerString(article), "/comments"), cid, proof)
}

// Like 点赞
func (c *Client) Like(ctx context.Context, slug string, cid common.Hash, proof types.Proof) (*Receipt, error) {
	return c.pointerWrite(ctx, projectPath(slug, "/like"), cid, proof)
}

// Unlike 取消点赞
func (c *Client) Unlike(ctx context.Context, slug string, cid common.Hash, proof types.Proof) (*Receipt, error) {
	return c.pointerWrite(ctx, projectPath(slug, "/unlike"), cid, proof)
}

// Pin 置顶
func (c *Client) Pin(ctx context.Context, slug string, cid common.Hash, proof types.Proof) (*Receipt, error) {
	return c.pointerWrite(ctx, projectPath(slug, "/pin"), cid, proof)
}

// Unpin 取消置顶
func (c *Client) Unpin(ctx context.Context, slug string, cid common.Hash, proof types.Proof) (*Receipt, error) {
	return c.pointerWrite(ctx, projectPath(slug, "/unpin"), cid, proof)
}

// Follow 关注
func (c *Client) Follow(ctx context.Context, slug string, user common.Address, proof types.Proof) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, projectPath(slug, "/follow"), map[string]interface{}{
		"user": user.Hex(), "proof": proofStrings(proof),
	})
}

// Unfollow 取消关注
func (c *Client) Unfollow(ctx context.Context, slug string, user common.Address, proof types.Proof) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, projectPath(slug, "/unfollow"), map[string]interface{}{
		"user": user.Hex(), "proof": proofStrings(proof),
	})
}

func (c *Client) pointerWrite(ctx context.Context, path string, cid common.Hash, proof types.Proof) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, path, map[string]interface{}{
		"cid": cid.Hex(), "proof": proofStrings(proof),
	})
}

// IsFollowing a 是否关注 b
func (c *Client) IsFollowing(ctx context.Context, slug string, a, b common.Address) (bool, error) {
	var out struct {
		Following bool `json:"following"`
	}
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/following/", a.Hex(), "/", b.Hex()), nil, nil, &out, false)
	return out.Following, err
}

// IsLiked 用户是否点赞内容
func (c *Client) IsLiked(ctx context.Context, slug string, cid common.Hash, user common.Address) (bool, error) {
	var out struct {
		Liked bool `json:"liked"`
	}
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/likes/", pointerString(cid), "/", user.Hex()), nil, nil, &out, false)
	return out.Liked, err
}

// IsPinned 用户是否置顶内容
func (c *Client) IsPinned(ctx context.Context, slug string, cid common.Hash, user common.Address) (bool, error) {
	var out struct {
		Pinned bool `json:"pinned"`
	}
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/pins/", pointerString(cid), "/", user.Hex()), nil, nil, &out, false)
	return out.Pinned, err
}

// GetLastArticleFrom 用户最新文章指针
func (c *Client) GetLastArticleFrom(ctx context.Context, slug string, user common.Address, proof types.Proof) (Pointer, error) {
	return c.pointerRead(ctx, projectPath(slug, "/users/", user.Hex(), "/articles/last"), proof)
}

// GetLastCommentByArticle 文章最新评论指针
func (c *Client) GetLastCommentByArticle(ctx context.Context, slug string, article common.Hash, proof types.Proof) (Pointer, error) {
	return c.pointerRead(ctx, projectPath(slug, "/articles/", pointerString(article), "/comments/last"), proof)
}

// GetMyLastArticle 自己的最新文章指针
func (c *Client) GetMyLastArticle(ctx context.Context, slug string) (Pointer, error) {
	return c.pointerRead(ctx, projectPath(slug, "/me/articles/last"), nil)
}

func (c *Client) pointerRead(ctx context.Context, path string, proof types.Proof) (Pointer, error) {
	var out Pointer
	_, err := c.call(ctx, http.MethodGet, path, proofQuery(proof), nil, &out, true)
	return out, err
}

// ===== 私信 =====

// SendMessage 更新与对方会话的最新消息指针
func (c *Client) SendMessage(ctx context.Context, slug string, cid common.Hash, to common.Address, proof types.Proof) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, projectPath(slug, "/messages"), map[string]interface{}{
		"cid": cid.Hex(), "to": to.Hex(), "proof": proofStrings(proof),
	})
}

// GetCurrentCID 与对方会话的最新消息指针
func (c *Client) GetCurrentCID(ctx context.Context, slug string, to common.Address, proof types.Proof) (Pointer, error) {
	return c.pointerRead(ctx, projectPath(slug, "/messages/", to.Hex(), "/current"), proof)
}

// BurnChat 清空与对方的会话指针
func (c *Client) BurnChat(ctx context.Context, slug string, to common.Address, proof types.Proof) (*Receipt, error) {
	return c.write(ctx, http.MethodPost, projectPath(slug, "/messages/", to.Hex(), "/burn"), map[string]interface{}{
		"proof": proofStrings(proof),
	})
}

// ===== 历史与内容 =====

// Logs 按条件查询事件日志
func (c *Client) Logs(ctx context.Context, filter types.LogFilter) ([]*types.LogEntry, error) {
	var out []*types.LogEntry
	_, err := c.call(ctx, http.MethodGet, apiPrefix+"/logs", filterQuery(filter), nil, &out, false)
	return out, err
}

// Following 用户当前关注的地址
func (c *Client) Following(ctx context.Context, slug string, user common.Address) ([]common.Address, error) {
	var out []common.Address
	_, err := c.call(ctx, http.MethodGet, projectPath(slug, "/users/", user.Hex(), "/following"), nil, nil, &out, false)
	return out, err
}

// PinContent 固定一份 JSON 文档，kind 为空时不做结构校验
func (c *Client) PinContent(ctx context.Context, name, kind string, document interface{}) (Pointer, error) {
	var out Pointer
	_, err := c.call(ctx, http.MethodPost, apiPrefix+"/content", nil, map[string]interface{}{
		"name": name, "kind": kind, "document": document,
	}, &out, true)
	return out, err
}

// FetchContent 读取文档原文
func (c *Client) FetchContent(ctx context.Context, cid string) ([]byte, error) {
	return c.callRaw(ctx, http.MethodGet, apiPrefix+"/content/"+url.PathEscape(cid), nil, nil, false)
}

func filterQuery(f types.LogFilter) url.Values {
	q := url.Values{}
	for _, addr := range f.Contracts {
		q.Add("contract", addr.Hex())
	}
	for _, name := range f.Names {
		q.Add("name", name)
	}
	for _, topic := range f.Topics {
		q.Add("topic", topic.Hex())
	}
	if f.FromSeq > 0 {
		q.Set("from_seq", strconv.FormatUint(f.FromSeq, 10))
	}
	if f.ToSeq > 0 {
		q.Set("to_seq", strconv.FormatUint(f.ToSeq, 10))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}
