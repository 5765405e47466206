// Package network 实现社交图谱合约：文章、评论、关注、点赞、置顶
//
// 关注、点赞、置顶都是严格双态关系（ABSENT/PRESENT），重复设置或重复取消都会回滚。
// 文章与评论只保存最新指针，历史由事件日志重建。
package network

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social/access"
	"github.com/weisyn/socialmaker/pkg/types"
)

const (
	fieldAccount = "account"
	fieldArticle = "article"
	fieldComment = "comment"
	fieldFollow  = "follow"
	fieldLike    = "like"
	fieldPin     = "pin"
)

// relation 一类双态关系
type relation struct {
	field      string
	setEvent   string
	unsetEvent string
	errSet     error
	errUnset   error
}

var (
	follow = relation{fieldFollow, types.EventFollowed, types.EventUnfollowed, types.ErrAlreadyFollowed, types.ErrAlreadyUnfollowed}
	like   = relation{fieldLike, types.EventLiked, types.EventUnliked, types.ErrAlreadyLiked, types.ErrAlreadyUnliked}
	pin    = relation{fieldPin, types.EventPinned, types.EventUnpinned, types.ErrAlreadyPinned, types.ErrAlreadyUnpinned}
)

// Init 初始化图谱合约
func Init(tx *ledger.Tx, instance, account common.Address) error {
	return tx.SetAddress(ledger.StateKey(instance, fieldAccount), account)
}

func gate(tx *ledger.Tx, instance, caller common.Address, proof types.Proof) error {
	account, err := tx.GetAddress(ledger.StateKey(instance, fieldAccount))
	if err != nil {
		return err
	}
	return access.Gate(tx, account, caller, proof, types.ServiceNetwork)
}

// toggle 在 (subject, object) 上执行一次状态转移，topics 为事件索引参数
func (r relation) toggle(tx *ledger.Tx, instance common.Address, subject, object []byte, present bool, topics []common.Hash) error {
	key := ledger.StateKey(instance, r.field, subject, object)
	exists, err := tx.Has(key)
	if err != nil {
		return err
	}

	name := r.setEvent
	if present {
		if exists {
			return r.errSet
		}
	} else {
		if !exists {
			return r.errUnset
		}
		name = r.unsetEvent
	}

	if err := tx.SetPresent(key, present); err != nil {
		return err
	}
	return tx.Emit(instance, name, topics, nil)
}

func (r relation) has(tx *ledger.Tx, instance common.Address, subject, object []byte) (bool, error) {
	return tx.Has(ledger.StateKey(instance, r.field, subject, object))
}

// PostArticle 覆盖作者的最新文章指针
func PostArticle(tx *ledger.Tx, instance, caller common.Address, cid common.Hash, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	if err := tx.SetHash(ledger.StateKey(instance, fieldArticle, caller.Bytes()), cid); err != nil {
		return err
	}
	return tx.Emit(instance, types.EventArticlePosted, []common.Hash{types.AddressTopic(caller)}, map[string]string{
		"cid": cid.Hex(),
	})
}

// PostComment 覆盖文章的最新评论指针
func PostComment(tx *ledger.Tx, instance, caller common.Address, article, cid common.Hash, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	if err := tx.SetHash(ledger.StateKey(instance, fieldComment, article.Bytes()), cid); err != nil {
		return err
	}
	return tx.Emit(instance, types.EventCommentPosted, []common.Hash{article, types.AddressTopic(caller)}, map[string]string{
		"cid": cid.Hex(),
	})
}

// Follow 关注
func Follow(tx *ledger.Tx, instance, caller, user common.Address, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	return follow.toggle(tx, instance, caller.Bytes(), user.Bytes(), true,
		[]common.Hash{types.AddressTopic(caller), types.AddressTopic(user)})
}

// Unfollow 取消关注
func Unfollow(tx *ledger.Tx, instance, caller, user common.Address, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	return follow.toggle(tx, instance, caller.Bytes(), user.Bytes(), false,
		[]common.Hash{types.AddressTopic(caller), types.AddressTopic(user)})
}

// Like 点赞
func Like(tx *ledger.Tx, instance, caller common.Address, cid common.Hash, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	return like.toggle(tx, instance, cid.Bytes(), caller.Bytes(), true,
		[]common.Hash{cid, types.AddressTopic(caller)})
}

// Unlike 取消点赞
func Unlike(tx *ledger.Tx, instance, caller common.Address, cid common.Hash, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	return like.toggle(tx, instance, cid.Bytes(), caller.Bytes(), false,
		[]common.Hash{cid, types.AddressTopic(caller)})
}

// Pin 置顶
func Pin(tx *ledger.Tx, instance, caller common.Address, cid common.Hash, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	return pin.toggle(tx, instance, cid.Bytes(), caller.Bytes(), true,
		[]common.Hash{cid, types.AddressTopic(caller)})
}

// Unpin 取消置顶
func Unpin(tx *ledger.Tx, instance, caller common.Address, cid common.Hash, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	return pin.toggle(tx, instance, cid.Bytes(), caller.Bytes(), false,
		[]common.Hash{cid, types.AddressTopic(caller)})
}

// GetLastArticleFrom 需要门禁的读取：user 的最新文章
func GetLastArticleFrom(tx *ledger.Tx, instance, caller, user common.Address, proof types.Proof) (common.Hash, error) {
	if err := gate(tx, instance, caller, proof); err != nil {
		return common.Hash{}, err
	}
	return LastArticle(tx, instance, user)
}

// GetLastCommentByArticle 需要门禁的读取：文章的最新评论
func GetLastCommentByArticle(tx *ledger.Tx, instance, caller common.Address, article common.Hash, proof types.Proof) (common.Hash, error) {
	if err := gate(tx, instance, caller, proof); err != nil {
		return common.Hash{}, err
	}
	return tx.GetHash(ledger.StateKey(instance, fieldComment, article.Bytes()))
}

// LastArticle 不经门禁读取最新文章指针，getMyLastArticle 以调用者身份使用
func LastArticle(tx *ledger.Tx, instance, author common.Address) (common.Hash, error) {
	return tx.GetHash(ledger.StateKey(instance, fieldArticle, author.Bytes()))
}

// IsFollowing a 是否关注 b
func IsFollowing(tx *ledger.Tx, instance, a, b common.Address) (bool, error) {
	return follow.has(tx, instance, a.Bytes(), b.Bytes())
}

// IsLiked user 是否点赞 cid
func IsLiked(tx *ledger.Tx, instance common.Address, cid common.Hash, user common.Address) (bool, error) {
	return like.has(tx, instance, cid.Bytes(), user.Bytes())
}

// IsPinned user 是否置顶 cid
func IsPinned(tx *ledger.Tx, instance common.Address, cid common.Hash, user common.Address) (bool, error) {
	return pin.has(tx, instance, cid.Bytes(), user.Bytes())
}
