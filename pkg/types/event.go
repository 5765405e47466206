package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// 合约事件名称
const (
	EventCreate         = "Create"
	EventUsersAdded     = "UsersAdded"
	EventServiceToggled = "ServiceToggled"
	EventCreateProfile  = "CreateProfile"
	EventProfileUpdated = "ProfileUpdated"
	EventArticlePosted  = "ArticlePosted"
	EventCommentPosted  = "CommentPosted"
	EventFollowed       = "Followed"
	EventUnfollowed     = "Unfollowed"
	EventLiked          = "Liked"
	EventUnliked        = "Unliked"
	EventPinned         = "Pinned"
	EventUnpinned       = "Unpinned"
	EventMessageSended  = "MessageSended"
	EventBurnChat       = "BurnChat"
)

// LogEntry 账本事件日志记录
// Topics 为索引参数（地址左补零成 32 字节），Data 为非索引参数的字符串形式
type LogEntry struct {
	Seq       uint64            `json:"seq"`
	Contract  common.Address    `json:"contract"`
	Name      string            `json:"name"`
	Topics    []common.Hash     `json:"topics"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// TopicAddress 第 i 个主题解释为地址，越界返回零地址
func (e *LogEntry) TopicAddress(i int) common.Address {
	if i < 0 || i >= len(e.Topics) {
		return common.Address{}
	}
	return common.BytesToAddress(e.Topics[i].Bytes())
}

// Topic 第 i 个主题，越界返回零值
func (e *LogEntry) Topic(i int) common.Hash {
	if i < 0 || i >= len(e.Topics) {
		return common.Hash{}
	}
	return e.Topics[i]
}

// LogFilter 事件日志过滤条件，零值字段不参与过滤
type LogFilter struct {
	Contracts []common.Address `json:"contracts,omitempty"` // 任一合约
	Names     []string         `json:"names,omitempty"`     // 任一事件名
	Topics    []common.Hash    `json:"topics,omitempty"`    // 全部出现（任意位置）
	FromSeq   uint64           `json:"from_seq,omitempty"`  // 含
	ToSeq     uint64           `json:"to_seq,omitempty"`    // 含，0 表示不限
	Limit     int              `json:"limit,omitempty"`     // 0 表示不限
}

// Match 判断日志是否满足过滤条件（不考虑 Limit）
func (f *LogFilter) Match(e *LogEntry) bool {
	if e.Seq < f.FromSeq || (f.ToSeq != 0 && e.Seq > f.ToSeq) {
		return false
	}
	if len(f.Contracts) > 0 && !containsAddress(f.Contracts, e.Contract) {
		return false
	}
	if len(f.Names) > 0 && !containsString(f.Names, e.Name) {
		return false
	}
	for _, want := range f.Topics {
		if !containsHash(e.Topics, want) {
			return false
		}
	}
	return true
}

// AddressTopic 地址作为索引主题
func AddressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func containsAddress(list []common.Address, v common.Address) bool {
	for _, a := range list {
		if a == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsHash(list []common.Hash, v common.Hash) bool {
	for _, h := range list {
		if h == v {
			return true
		}
	}
	return false
}

// Receipt 一次已提交调用的回执
type Receipt struct {
	Call string      `json:"call"`
	Logs []*LogEntry `json:"logs"`
}
