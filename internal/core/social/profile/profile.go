// Package profile 实现用户资料合约
package profile

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social/access"
	"github.com/weisyn/socialmaker/pkg/types"
)

const (
	fieldOwner   = "owner"
	fieldAccount = "account"
	fieldProfile = "profile"
)

func profileKey(instance, user common.Address) []byte {
	return ledger.StateKey(instance, fieldProfile, user.Bytes())
}

// Init 初始化资料合约，owner 为项目创建者，account 为访问控制合约
func Init(tx *ledger.Tx, instance, owner, account common.Address) error {
	if err := tx.SetAddress(ledger.StateKey(instance, fieldOwner), owner); err != nil {
		return err
	}
	return tx.SetAddress(ledger.StateKey(instance, fieldAccount), account)
}

func accountOf(tx *ledger.Tx, instance common.Address) (common.Address, error) {
	return tx.GetAddress(ledger.StateKey(instance, fieldAccount))
}

// Get 读取资料，不存在返回零值
func Get(tx *ledger.Tx, instance, user common.Address) (types.Profile, error) {
	var p types.Profile
	if _, err := tx.GetJSON(profileKey(instance, user), &p); err != nil {
		return types.Profile{}, err
	}
	return p, nil
}

func put(tx *ledger.Tx, instance, user common.Address, p types.Profile) error {
	return tx.SetJSON(profileKey(instance, user), p)
}

// CreateProfile 所有者为用户设置名称，保留用户已设置的昵称与状态
func CreateProfile(tx *ledger.Tx, instance, caller, user common.Address, name string) error {
	owner, err := tx.GetAddress(ledger.StateKey(instance, fieldOwner))
	if err != nil {
		return err
	}
	if owner != caller {
		return types.OwnableUnauthorizedAccount(caller)
	}

	p, err := Get(tx, instance, user)
	if err != nil {
		return err
	}
	p.Name = name
	if err := put(tx, instance, user, p); err != nil {
		return err
	}
	return tx.Emit(instance, types.EventCreateProfile, []common.Hash{types.AddressTopic(user)}, nil)
}

// UpdatePseudo 成员修改自己的昵称，不检查服务开关
func UpdatePseudo(tx *ledger.Tx, instance, caller common.Address, pseudo string, proof types.Proof) error {
	return update(tx, instance, caller, proof, func(p *types.Profile) { p.Pseudo = pseudo })
}

// UpdateStatus 成员修改自己的状态，不检查服务开关
func UpdateStatus(tx *ledger.Tx, instance, caller common.Address, status bool, proof types.Proof) error {
	return update(tx, instance, caller, proof, func(p *types.Profile) { p.Status = status })
}

func update(tx *ledger.Tx, instance, caller common.Address, proof types.Proof, mutate func(*types.Profile)) error {
	account, err := accountOf(tx, instance)
	if err != nil {
		return err
	}
	if err := access.RequireUser(tx, account, caller, proof); err != nil {
		return err
	}

	p, err := Get(tx, instance, caller)
	if err != nil {
		return err
	}
	mutate(&p)
	if err := put(tx, instance, caller, p); err != nil {
		return err
	}
	return tx.Emit(instance, types.EventProfileUpdated, []common.Hash{types.AddressTopic(caller)}, nil)
}
