// Package history 从事件日志重建链上只保存最新指针的历史
//
// 账本状态对每个实体只保留 O(1) 的最新指针，完整的文章流、评论串、
// 会话记录都按事件日志回放得到；私信正文链通过文档中的 parent 字段逐条回溯。
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/ipfs"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
	"github.com/weisyn/socialmaker/pkg/types"
)

// ErrChainTooLong 私信链超过回溯上限
var ErrChainTooLong = errors.New("消息链超过回溯上限")

// MessageFetcher 按 CID 读取私信文档
type MessageFetcher interface {
	FetchMessage(ctx context.Context, cid string) (*ipfs.Message, error)
}

// Service 历史重建服务
type Service struct {
	ledger   *ledger.Ledger
	registry socialiface.Registry
	messages MessageFetcher
}

var _ socialiface.History = (*Service)(nil)

// NewService 创建历史服务，messages 为 nil 时不支持私信链回溯
func NewService(l *ledger.Ledger, registry socialiface.Registry, messages MessageFetcher) *Service {
	return &Service{ledger: l, registry: registry, messages: messages}
}

// Logs 原始日志查询
func (s *Service) Logs(ctx context.Context, filter types.LogFilter) ([]*types.LogEntry, error) {
	return s.ledger.Logs(ctx, filter)
}

// ArticleHistory 作者的全部文章，最新在前
func (s *Service) ArticleHistory(ctx context.Context, slug string, author common.Address) ([]*types.LogEntry, error) {
	project, err := s.registry.GetProject(ctx, slug)
	if err != nil {
		return nil, err
	}
	logs, err := s.ledger.Logs(ctx, types.LogFilter{
		Contracts: []common.Address{project.Network},
		Names:     []string{types.EventArticlePosted},
		Topics:    []common.Hash{types.AddressTopic(author)},
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(logs), nil
}

// Following 回放关注事件得到 user 当前关注的地址集合
func (s *Service) Following(ctx context.Context, slug string, user common.Address) (map[common.Address]bool, error) {
	project, err := s.registry.GetProject(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.following(ctx, project, user)
}

func (s *Service) following(ctx context.Context, project *types.Project, user common.Address) (map[common.Address]bool, error) {
	logs, err := s.ledger.Logs(ctx, types.LogFilter{
		Contracts: []common.Address{project.Network},
		Names:     []string{types.EventFollowed, types.EventUnfollowed},
		Topics:    []common.Hash{types.AddressTopic(user)},
	})
	if err != nil {
		return nil, err
	}

	set := make(map[common.Address]bool)
	for _, entry := range logs {
		if entry.TopicAddress(0) != user {
			continue
		}
		target := entry.TopicAddress(1)
		if entry.Name == types.EventFollowed {
			set[target] = true
		} else {
			delete(set, target)
		}
	}
	return set, nil
}

// Feed 当前关注对象的文章，最新在前
func (s *Service) Feed(ctx context.Context, slug string, user common.Address) ([]*types.LogEntry, error) {
	project, err := s.registry.GetProject(ctx, slug)
	if err != nil {
		return nil, err
	}
	followees, err := s.following(ctx, project, user)
	if err != nil {
		return nil, err
	}
	if len(followees) == 0 {
		return []*types.LogEntry{}, nil
	}

	logs, err := s.ledger.Logs(ctx, types.LogFilter{
		Contracts: []common.Address{project.Network},
		Names:     []string{types.EventArticlePosted},
	})
	if err != nil {
		return nil, err
	}

	feed := make([]*types.LogEntry, 0, len(logs))
	for _, entry := range logs {
		if followees[entry.TopicAddress(0)] {
			feed = append(feed, entry)
		}
	}
	return newestFirst(feed), nil
}

// Comments 文章的全部评论，按发布顺序
func (s *Service) Comments(ctx context.Context, slug string, article common.Hash) ([]*types.LogEntry, error) {
	project, err := s.registry.GetProject(ctx, slug)
	if err != nil {
		return nil, err
	}
	logs, err := s.ledger.Logs(ctx, types.LogFilter{
		Contracts: []common.Address{project.Network},
		Names:     []string{types.EventCommentPosted},
		Topics:    []common.Hash{article},
	})
	if err != nil {
		return nil, err
	}

	out := make([]*types.LogEntry, 0, len(logs))
	for _, entry := range logs {
		if entry.Topic(0) == article {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Conversation a 与 b 之间最近一次 BurnChat 之后的消息，按发送顺序
func (s *Service) Conversation(ctx context.Context, slug string, a, b common.Address) ([]*types.LogEntry, error) {
	project, err := s.registry.GetProject(ctx, slug)
	if err != nil {
		return nil, err
	}
	logs, err := s.ledger.Logs(ctx, types.LogFilter{
		Contracts: []common.Address{project.Messenger},
		Names:     []string{types.EventMessageSended, types.EventBurnChat},
		Topics:    []common.Hash{types.AddressTopic(a), types.AddressTopic(b)},
	})
	if err != nil {
		return nil, err
	}

	out := make([]*types.LogEntry, 0, len(logs))
	for _, entry := range logs {
		from, to := entry.TopicAddress(0), entry.TopicAddress(1)
		if !((from == a && to == b) || (from == b && to == a)) {
			continue
		}
		if entry.Name == types.EventBurnChat {
			out = out[:0]
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// ResolveMessageChain 从 cid 开始沿 metadata.parent 回溯私信文档，最新在前
func (s *Service) ResolveMessageChain(ctx context.Context, cid string, limit int) ([]*ipfs.Message, error) {
	if s.messages == nil {
		return nil, fmt.Errorf("未配置文档读取")
	}

	var chain []*ipfs.Message
	seen := make(map[string]bool)
	for next := cid; next != ""; {
		if limit > 0 && len(chain) >= limit {
			return chain, fmt.Errorf("%w: %d", ErrChainTooLong, limit)
		}
		if seen[next] {
			break
		}
		seen[next] = true

		msg, err := s.messages.FetchMessage(ctx, next)
		if err != nil {
			return chain, err
		}
		chain = append(chain, msg)
		next = msg.Metadata.Parent
	}
	return chain, nil
}

func newestFirst(logs []*types.LogEntry) []*types.LogEntry {
	out := make([]*types.LogEntry, len(logs))
	for i, entry := range logs {
		out[len(logs)-1-i] = entry
	}
	return out
}
