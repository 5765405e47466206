// Package social 把五个合约组合为按项目 slug 寻址的服务
//
// 每个修改状态的方法对应一次 ledger.Execute：先在同一事务内解析项目，
// 再调用子合约；任何回滚都会丢弃整次调用的写入与事件。
package social

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social/access"
	"github.com/weisyn/socialmaker/internal/core/social/messenger"
	"github.com/weisyn/socialmaker/internal/core/social/network"
	"github.com/weisyn/socialmaker/internal/core/social/profile"
	"github.com/weisyn/socialmaker/internal/core/social/registry"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
	"github.com/weisyn/socialmaker/pkg/types"
)

// Service 合约服务
type Service struct {
	ledger   *ledger.Ledger
	registry common.Address
	logger   log.Logger
}

var _ socialiface.Service = (*Service)(nil)

// NewService 创建合约服务，registry 为注册表合约地址
func NewService(l *ledger.Ledger, registryAddr common.Address, logger log.Logger) *Service {
	return &Service{ledger: l, registry: registryAddr, logger: logger}
}

// RegistryAddress 注册表合约地址
func (s *Service) RegistryAddress() common.Address {
	return s.registry
}

// exec 在一次原子调用中解析项目并执行 fn
func (s *Service) exec(ctx context.Context, call, slug string, fn func(tx *ledger.Tx, p *types.Project) error) (*types.Receipt, error) {
	return s.ledger.Execute(ctx, call, func(tx *ledger.Tx) error {
		project, err := registry.GetProject(tx, s.registry, slug)
		if err != nil {
			return err
		}
		return fn(tx, project)
	})
}

// view 在只读快照上解析项目并执行 fn
func (s *Service) view(ctx context.Context, slug string, fn func(tx *ledger.Tx, p *types.Project) error) error {
	return s.ledger.View(ctx, func(tx *ledger.Tx) error {
		project, err := registry.GetProject(tx, s.registry, slug)
		if err != nil {
			return err
		}
		return fn(tx, project)
	})
}

// ============================================================================
//                              Registry
// ============================================================================

// Create 创建项目
func (s *Service) Create(ctx context.Context, caller common.Address, name, slug string, users []common.Address, root common.Hash) (*types.Project, *types.Receipt, error) {
	var project *types.Project
	receipt, err := s.ledger.Execute(ctx, "registry.create", func(tx *ledger.Tx) error {
		var err error
		project, err = registry.Create(tx, s.registry, caller, name, slug, users, root)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if s.logger != nil {
		s.logger.Infof("项目已创建: slug=%s, owner=%s, account=%s", slug, caller.Hex(), project.Account.Hex())
	}
	return project, receipt, nil
}

// GetProject 查询项目
func (s *Service) GetProject(ctx context.Context, slug string) (*types.Project, error) {
	var project *types.Project
	err := s.view(ctx, slug, func(_ *ledger.Tx, p *types.Project) error {
		project = p
		return nil
	})
	return project, err
}

// GetProjectName 查询项目名称
func (s *Service) GetProjectName(ctx context.Context, slug string) (string, error) {
	var name string
	err := s.ledger.View(ctx, func(tx *ledger.Tx) error {
		var err error
		name, err = registry.GetProjectName(tx, s.registry, slug)
		return err
	})
	return name, err
}

// ListProjects 按创建顺序列出项目
func (s *Service) ListProjects(ctx context.Context) ([]*types.Project, error) {
	logs, err := s.ledger.Logs(ctx, types.LogFilter{
		Contracts: []common.Address{s.registry},
		Names:     []string{types.EventCreate},
	})
	if err != nil {
		return nil, err
	}

	projects := make([]*types.Project, 0, len(logs))
	err = s.ledger.View(ctx, func(tx *ledger.Tx) error {
		for _, entry := range logs {
			project, err := registry.GetProject(tx, s.registry, entry.Data["slug"])
			if err != nil {
				return err
			}
			projects = append(projects, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ============================================================================
//                              AccessControl
// ============================================================================

// IsUser 成员校验
func (s *Service) IsUser(ctx context.Context, slug string, addr common.Address, proof types.Proof) (bool, error) {
	var ok bool
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		ok, err = access.IsUser(tx, p.Account, addr, proof)
		return err
	})
	return ok, err
}

// IsServiceActive 服务开关状态
func (s *Service) IsServiceActive(ctx context.Context, slug string, id types.ServiceID) (bool, error) {
	var ok bool
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		ok, err = access.IsServiceActive(tx, p.Account, id)
		return err
	})
	return ok, err
}

// AddMoreUser 替换成员根
func (s *Service) AddMoreUser(ctx context.Context, slug string, caller common.Address, addrs []common.Address, root common.Hash) (*types.Receipt, error) {
	return s.exec(ctx, "access.addMoreUser", slug, func(tx *ledger.Tx, p *types.Project) error {
		return access.AddMoreUser(tx, p.Account, caller, addrs, root)
	})
}

// ToggleServices 翻转全部服务
func (s *Service) ToggleServices(ctx context.Context, slug string, caller common.Address) (*types.Receipt, error) {
	return s.exec(ctx, "access.toggleServices", slug, func(tx *ledger.Tx, p *types.Project) error {
		return access.ToggleServices(tx, p.Account, caller)
	})
}

// ToggleService 翻转单个服务
func (s *Service) ToggleService(ctx context.Context, slug string, caller common.Address, id types.ServiceID) (*types.Receipt, error) {
	return s.exec(ctx, "access.toggleService", slug, func(tx *ledger.Tx, p *types.Project) error {
		return access.ToggleService(tx, p.Account, caller, id)
	})
}

// ============================================================================
//                              Profile
// ============================================================================

// CreateProfile 设置用户名称
func (s *Service) CreateProfile(ctx context.Context, slug string, caller, user common.Address, name string) (*types.Receipt, error) {
	return s.exec(ctx, "profile.createProfile", slug, func(tx *ledger.Tx, p *types.Project) error {
		return profile.CreateProfile(tx, p.Profile, caller, user, name)
	})
}

// UpdatePseudo 修改昵称
func (s *Service) UpdatePseudo(ctx context.Context, slug string, caller common.Address, pseudo string, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "profile.updatePseudo", slug, func(tx *ledger.Tx, p *types.Project) error {
		return profile.UpdatePseudo(tx, p.Profile, caller, pseudo, proof)
	})
}

// UpdateStatus 修改状态
func (s *Service) UpdateStatus(ctx context.Context, slug string, caller common.Address, status bool, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "profile.updateStatus", slug, func(tx *ledger.Tx, p *types.Project) error {
		return profile.UpdateStatus(tx, p.Profile, caller, status, proof)
	})
}

// GetMyProfile 调用者自己的资料
func (s *Service) GetMyProfile(ctx context.Context, slug string, caller common.Address) (types.Profile, error) {
	return s.GetProfile(ctx, slug, caller)
}

// GetProfile 任意用户的资料
func (s *Service) GetProfile(ctx context.Context, slug string, user common.Address) (types.Profile, error) {
	var out types.Profile
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		out, err = profile.Get(tx, p.Profile, user)
		return err
	})
	return out, err
}

// ============================================================================
//                              SocialGraph
// ============================================================================

// PostArticle 发布文章
func (s *Service) PostArticle(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.postArticle", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.PostArticle(tx, p.Network, caller, cid, proof)
	})
}

// PostComment 发布评论
func (s *Service) PostComment(ctx context.Context, slug string, caller common.Address, article, cid common.Hash, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.postComment", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.PostComment(tx, p.Network, caller, article, cid, proof)
	})
}

// Follow 关注
func (s *Service) Follow(ctx context.Context, slug string, caller, user common.Address, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.follow", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.Follow(tx, p.Network, caller, user, proof)
	})
}

// Unfollow 取消关注
func (s *Service) Unfollow(ctx context.Context, slug string, caller, user common.Address, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.unfollow", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.Unfollow(tx, p.Network, caller, user, proof)
	})
}

// Like 点赞
func (s *Service) Like(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.like", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.Like(tx, p.Network, caller, cid, proof)
	})
}

// Unlike 取消点赞
func (s *Service) Unlike(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.unlike", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.Unlike(tx, p.Network, caller, cid, proof)
	})
}

// Pin 置顶
func (s *Service) Pin(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.pin", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.Pin(tx, p.Network, caller, cid, proof)
	})
}

// Unpin 取消置顶
func (s *Service) Unpin(ctx context.Context, slug string, caller common.Address, cid common.Hash, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "network.unpin", slug, func(tx *ledger.Tx, p *types.Project) error {
		return network.Unpin(tx, p.Network, caller, cid, proof)
	})
}

// GetLastArticleFrom 读取 user 的最新文章（门禁）
func (s *Service) GetLastArticleFrom(ctx context.Context, slug string, caller, user common.Address, proof types.Proof) (common.Hash, error) {
	var cid common.Hash
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		cid, err = network.GetLastArticleFrom(tx, p.Network, caller, user, proof)
		return err
	})
	return cid, err
}

// GetLastCommentByArticle 读取文章的最新评论（门禁）
func (s *Service) GetLastCommentByArticle(ctx context.Context, slug string, caller common.Address, article common.Hash, proof types.Proof) (common.Hash, error) {
	var cid common.Hash
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		cid, err = network.GetLastCommentByArticle(tx, p.Network, caller, article, proof)
		return err
	})
	return cid, err
}

// GetMyLastArticle 调用者自己的最新文章
func (s *Service) GetMyLastArticle(ctx context.Context, slug string, caller common.Address) (common.Hash, error) {
	var cid common.Hash
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		cid, err = network.LastArticle(tx, p.Network, caller)
		return err
	})
	return cid, err
}

// IsFollowing a 是否关注 b
func (s *Service) IsFollowing(ctx context.Context, slug string, a, b common.Address) (bool, error) {
	var ok bool
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		ok, err = network.IsFollowing(tx, p.Network, a, b)
		return err
	})
	return ok, err
}

// IsLiked user 是否点赞 cid
func (s *Service) IsLiked(ctx context.Context, slug string, cid common.Hash, user common.Address) (bool, error) {
	var ok bool
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		ok, err = network.IsLiked(tx, p.Network, cid, user)
		return err
	})
	return ok, err
}

// IsPinned user 是否置顶 cid
func (s *Service) IsPinned(ctx context.Context, slug string, cid common.Hash, user common.Address) (bool, error) {
	var ok bool
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		ok, err = network.IsPinned(tx, p.Network, cid, user)
		return err
	})
	return ok, err
}

// ============================================================================
//                              Messenger
// ============================================================================

// SendMessage 发送消息
func (s *Service) SendMessage(ctx context.Context, slug string, caller common.Address, cid common.Hash, to common.Address, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "messenger.sendMessage", slug, func(tx *ledger.Tx, p *types.Project) error {
		return messenger.SendMessage(tx, p.Messenger, caller, cid, to, proof)
	})
}

// GetCurrentCID 会话最新消息
func (s *Service) GetCurrentCID(ctx context.Context, slug string, caller, to common.Address, proof types.Proof) (common.Hash, error) {
	var cid common.Hash
	err := s.view(ctx, slug, func(tx *ledger.Tx, p *types.Project) error {
		var err error
		cid, err = messenger.GetCurrentCID(tx, p.Messenger, caller, to, proof)
		return err
	})
	return cid, err
}

// BurnChat 清空会话指针
func (s *Service) BurnChat(ctx context.Context, slug string, caller, to common.Address, proof types.Proof) (*types.Receipt, error) {
	return s.exec(ctx, "messenger.burnChat", slug, func(tx *ledger.Tx, p *types.Project) error {
		return messenger.BurnChat(tx, p.Messenger, caller, to, proof)
	})
}
