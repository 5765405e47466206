// Package messenger 实现私信合约
//
// 每个会话只保存最新消息的 CID 指针。会话键为两个地址排序后的无序对，
// 发送方与接收方读取到的是同一个指针。
package messenger

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social/access"
	"github.com/weisyn/socialmaker/pkg/types"
)

const (
	fieldAccount = "account"
	fieldChat    = "chat"
)

// Init 初始化私信合约
func Init(tx *ledger.Tx, instance, account common.Address) error {
	return tx.SetAddress(ledger.StateKey(instance, fieldAccount), account)
}

// ConversationKey 无序地址对
func ConversationKey(a, b common.Address) []byte {
	lo, hi := a, b
	if bytes.Compare(lo.Bytes(), hi.Bytes()) > 0 {
		lo, hi = hi, lo
	}
	return append(lo.Bytes(), hi.Bytes()...)
}

func chatKey(instance, a, b common.Address) []byte {
	return ledger.StateKey(instance, fieldChat, ConversationKey(a, b))
}

func gate(tx *ledger.Tx, instance, caller common.Address, proof types.Proof) error {
	account, err := tx.GetAddress(ledger.StateKey(instance, fieldAccount))
	if err != nil {
		return err
	}
	return access.Gate(tx, account, caller, proof, types.ServiceMessenger)
}

// SendMessage 覆盖会话指针
func SendMessage(tx *ledger.Tx, instance, caller common.Address, cid common.Hash, to common.Address, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	if err := tx.SetHash(chatKey(instance, caller, to), cid); err != nil {
		return err
	}
	return tx.Emit(instance, types.EventMessageSended,
		[]common.Hash{types.AddressTopic(caller), types.AddressTopic(to)},
		map[string]string{"cid": cid.Hex()})
}

// GetCurrentCID 读取会话指针
func GetCurrentCID(tx *ledger.Tx, instance, caller, to common.Address, proof types.Proof) (common.Hash, error) {
	if err := gate(tx, instance, caller, proof); err != nil {
		return common.Hash{}, err
	}
	return tx.GetHash(chatKey(instance, caller, to))
}

// BurnChat 把会话指针清零
func BurnChat(tx *ledger.Tx, instance, caller, to common.Address, proof types.Proof) error {
	if err := gate(tx, instance, caller, proof); err != nil {
		return err
	}
	if err := tx.SetHash(chatKey(instance, caller, to), common.Hash{}); err != nil {
		return err
	}
	return tx.Emit(instance, types.EventBurnChat,
		[]common.Hash{types.AddressTopic(caller), types.AddressTopic(to)}, nil)
}
