package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ServiceID 服务开关编号
type ServiceID uint8

const (
	// ServiceNetwork 社交图谱（文章、关注、点赞、置顶、评论）
	ServiceNetwork ServiceID = 0
	// ServiceMessenger 私信
	ServiceMessenger ServiceID = 1
)

// AllServices 已注册的全部服务，按编号升序
func AllServices() []ServiceID {
	return []ServiceID{ServiceNetwork, ServiceMessenger}
}

// Known 是否为已注册的服务
func (s ServiceID) Known() bool {
	for _, id := range AllServices() {
		if id == s {
			return true
		}
	}
	return false
}

// String 服务名称
func (s ServiceID) String() string {
	switch s {
	case ServiceNetwork:
		return "network"
	case ServiceMessenger:
		return "messenger"
	default:
		return fmt.Sprintf("service(%d)", uint8(s))
	}
}

// Proof Merkle 证明，自叶子向根排列的兄弟节点哈希
type Proof []common.Hash

// Project 一个社交网络项目及其四个子合约地址
type Project struct {
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Owner     common.Address `json:"owner"`
	Account   common.Address `json:"account"`
	Network   common.Address `json:"network"`
	Messenger common.Address `json:"messenger"`
	Profile   common.Address `json:"profile"`
}

// Profile 用户资料
type Profile struct {
	Name   string `json:"name"`   // 管理员设置
	Pseudo string `json:"pseudo"` // 用户自己设置的昵称
	Status bool   `json:"status"`
}
