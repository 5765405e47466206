// Package access 实现社交网络的访问控制合约
//
// 成员资格以 Merkle 根承诺，调用方每次提供证明；根只能由管理员整体替换，
// 合约不重新计算也不校验新根与地址列表是否一致。
// 服务开关按服务编号存储，创建时全部开启，由所有者切换。
package access

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/socialmaker/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/pkg/types"
)

const (
	fieldOwner   = "owner"
	fieldAdmin   = "admin"
	fieldRoot    = "root"
	fieldService = "service"
)

func serviceKey(instance common.Address, id types.ServiceID) []byte {
	return ledger.StateKey(instance, fieldService, []byte{byte(id)})
}

// Init 初始化实例：所有者与管理员均为 owner，全部服务开启
func Init(tx *ledger.Tx, instance, owner common.Address, root common.Hash) error {
	if err := tx.SetAddress(ledger.StateKey(instance, fieldOwner), owner); err != nil {
		return err
	}
	if err := tx.SetAddress(ledger.StateKey(instance, fieldAdmin), owner); err != nil {
		return err
	}
	if err := tx.SetHash(ledger.StateKey(instance, fieldRoot), root); err != nil {
		return err
	}
	for _, id := range types.AllServices() {
		if err := tx.SetPresent(serviceKey(instance, id), true); err != nil {
			return err
		}
	}
	return nil
}

// Owner 所有者
func Owner(tx *ledger.Tx, instance common.Address) (common.Address, error) {
	return tx.GetAddress(ledger.StateKey(instance, fieldOwner))
}

// Admin 管理员
func Admin(tx *ledger.Tx, instance common.Address) (common.Address, error) {
	return tx.GetAddress(ledger.StateKey(instance, fieldAdmin))
}

// Root 当前成员 Merkle 根
func Root(tx *ledger.Tx, instance common.Address) (common.Hash, error) {
	return tx.GetHash(ledger.StateKey(instance, fieldRoot))
}

// IsUser 校验 addr 的证明是否能折叠到当前根
func IsUser(tx *ledger.Tx, instance, addr common.Address, proof types.Proof) (bool, error) {
	root, err := Root(tx, instance)
	if err != nil {
		return false, err
	}
	return merkle.VerifyAddress(addr, proof, root), nil
}

// IsServiceActive 服务是否开启，未注册的编号为 false
func IsServiceActive(tx *ledger.Tx, instance common.Address, id types.ServiceID) (bool, error) {
	return tx.Has(serviceKey(instance, id))
}

// RequireUser 非成员回滚 OnlyUser
func RequireUser(tx *ledger.Tx, instance, caller common.Address, proof types.Proof) error {
	ok, err := IsUser(tx, instance, caller, proof)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrOnlyUser
	}
	return nil
}

// RequireService 服务关闭时回滚 OnlyService
func RequireService(tx *ledger.Tx, instance common.Address, id types.ServiceID) error {
	ok, err := IsServiceActive(tx, instance, id)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrOnlyService
	}
	return nil
}

// Gate 先校验成员，再校验服务开关
func Gate(tx *ledger.Tx, instance, caller common.Address, proof types.Proof, id types.ServiceID) error {
	if err := RequireUser(tx, instance, caller, proof); err != nil {
		return err
	}
	return RequireService(tx, instance, id)
}

// RequireOwner 非所有者回滚 OwnableUnauthorizedAccount(caller)
func RequireOwner(tx *ledger.Tx, instance, caller common.Address) error {
	owner, err := Owner(tx, instance)
	if err != nil {
		return err
	}
	if owner != caller {
		return types.OwnableUnauthorizedAccount(caller)
	}
	return nil
}

// AddMoreUser 管理员整体替换成员根，地址列表只进入事件供链下重建
func AddMoreUser(tx *ledger.Tx, instance, caller common.Address, addrs []common.Address, root common.Hash) error {
	admin, err := Admin(tx, instance)
	if err != nil {
		return err
	}
	if admin != caller {
		return types.ErrOnlyAdmin
	}
	if err := tx.SetHash(ledger.StateKey(instance, fieldRoot), root); err != nil {
		return err
	}
	return EmitUsersAdded(tx, instance, addrs, root)
}

// EmitUsersAdded 发出 UsersAdded(addresses, root)
func EmitUsersAdded(tx *ledger.Tx, instance common.Address, addrs []common.Address, root common.Hash) error {
	return tx.Emit(instance, types.EventUsersAdded, nil, map[string]string{
		"root":      root.Hex(),
		"addresses": JoinAddresses(addrs),
	})
}

// ToggleServices 所有者翻转全部服务开关
func ToggleServices(tx *ledger.Tx, instance, caller common.Address) error {
	if err := RequireOwner(tx, instance, caller); err != nil {
		return err
	}
	for _, id := range types.AllServices() {
		if err := flip(tx, instance, id); err != nil {
			return err
		}
	}
	return nil
}

// ToggleService 所有者翻转单个服务开关
func ToggleService(tx *ledger.Tx, instance, caller common.Address, id types.ServiceID) error {
	if err := RequireOwner(tx, instance, caller); err != nil {
		return err
	}
	if !id.Known() {
		return types.InvalidArgument("unknown service " + id.String())
	}
	return flip(tx, instance, id)
}

func flip(tx *ledger.Tx, instance common.Address, id types.ServiceID) error {
	active, err := IsServiceActive(tx, instance, id)
	if err != nil {
		return err
	}
	if err := tx.SetPresent(serviceKey(instance, id), !active); err != nil {
		return err
	}
	return tx.Emit(instance, types.EventServiceToggled, nil, map[string]string{
		"service": strconv.Itoa(int(id)),
		"active":  strconv.FormatBool(!active),
	})
}

// JoinAddresses 地址列表的事件编码（逗号分隔）
func JoinAddresses(addrs []common.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.Hex()
	}
	return strings.Join(parts, ",")
}

// SplitAddresses JoinAddresses 的逆操作
func SplitAddresses(s string) []common.Address {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]common.Address, 0, len(parts))
	for _, p := range parts {
		out = append(out, common.HexToAddress(strings.TrimSpace(p)))
	}
	return out
}
