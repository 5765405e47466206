// Package social 定义社交网络合约的服务接口
//
// 所有方法以项目 slug 定位子合约，caller 为已认证的调用者地址。
// 修改状态的方法返回回执，回滚以 *types.RevertError 返回。
package social

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/pkg/types"
)

// Registry 项目注册表
type Registry interface {
	Create(ctx context.Context, caller common.Address, name, slug string, users []common.Address, root common.Hash) (*types.Project, *types.Receipt, error)
	GetProject(ctx context.Context, slug string) (*types.Project, error)
	GetProjectName(ctx context.Context, slug string) (string, error)
	ListProjects(ctx context.Context) ([]*types.Project, error)
}

// AccessControl 访问控制
type AccessControl interface {
	IsUser(ctx context.Context, slug string, addr common.Address, proof types.Proof) (bool, error)
	IsServiceActive(ctx context.Context, slug string, id types.ServiceID) (bool, error)
	AddMoreUser(ctx context.Context, slug string, caller common.Address, addrs []common.Address, root common.Hash) (*types.Receipt, error)
	ToggleServices(ctx context.Context, slug string, caller common.Address) (*types.Receipt, error)
	ToggleService(ctx context.Context, slug string, caller common.Address, id types.ServiceID) (*types.Receipt, error)
}

// Profile 用户资料
type Profile interface {
	CreateProfile(ctx context.Context, slug string, caller, user common.Address, name string) (*types.Receipt, error)
	UpdatePseudo(ctx context.Context, slug string, caller common.Address, pseudo string, proof types.Proof) (*types.Receipt, error)
	UpdateStatus(ctx context.Context, slug string, caller common.Address, status bool, proof types.Proof) (*types.Receipt, error)
	GetMyProfile(ctx context.Context, slug string, caller common.Address) (types.Profile, error)
	GetProfile(ctx context.Context, slug string, user common.Address) (types.Profile, error)
}

// SocialGraph 文章、评论、关注、点赞、置顶
type SocialGraph interface {
	PostArticle(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error)
	PostComment(ctx context.Context, slug string, caller common.Address, article, cid common.Hash, proof types.Proof) (*types.Receipt, error)
	Follow(ctx context.Context, slug string, caller, user common.Address, proof types.Proof) (*types.Receipt, error)
	Unfollow(ctx context.Context, slug string, caller, user common.Address, proof types.Proof) (*types.Receipt, error)
	Like(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error)
	Unlike(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error)
	Pin(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error)
	Unpin(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error)
	GetLastArticleFrom(ctx context.Context, slug string, caller, user common.Address, proof types.Proof) (common.Hash, error)
	GetLastCommentByArticle(ctx context.Context, slug string, caller common.Address, article common.Hash, proof types.Proof) (common.Hash, error)
	GetMyLastArticle(ctx context.Context, slug string, caller common.Address) (common.Hash, error)
	IsFollowing(ctx context.Context, slug string, a, b common.Address) (bool, error)
	IsLiked(ctx context.Context, slug string, cid common.Hash, user common.Address) (bool, error)
	IsPinned(ctx context.Context, slug string, cid common.Hash, user common.Address) (bool, error)
}

// Messenger 私信
type Messenger interface {
	SendMessage(ctx context.Context, slug string, caller common.Address, cid common.Hash, to common.Address, proof types.Proof) (*types.Receipt, error)
	GetCurrentCID(ctx context.Context, slug string, caller, to common.Address, proof types.Proof) (common.Hash, error)
	BurnChat(ctx context.Context, slug string, caller, to common.Address, proof types.Proof) (*types.Receipt, error)
}

// Service 全部合约操作
type Service interface {
	Registry
	AccessControl
	Profile
	SocialGraph
	Messenger
}

// History 基于事件日志的历史重建
type History interface {
	ArticleHistory(ctx context.Context, slug string, author common.Address) ([]*types.LogEntry, error)
	Feed(ctx context.Context, slug string, user common.Address) ([]*types.LogEntry, error)
	Comments(ctx context.Context, slug string, article common.Hash) ([]*types.LogEntry, error)
	Conversation(ctx context.Context, slug string, a, b common.Address) ([]*types.LogEntry, error)
	Logs(ctx context.Context, filter types.LogFilter) ([]*types.LogEntry, error)
}
