// Package registry 实现项目注册表合约
//
// create 以 slug 为唯一键登记项目，并按注册表的部署计数派生四个子合约地址，
// 与以太坊 CREATE 地址规则一致。
package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/internal/core/social/access"
	"github.com/weisyn/socialmaker/internal/core/social/messenger"
	"github.com/weisyn/socialmaker/internal/core/social/network"
	"github.com/weisyn/socialmaker/internal/core/social/profile"
	"github.com/weisyn/socialmaker/pkg/types"
)

const fieldProject = "project"

func projectKey(registry common.Address, slug string) []byte {
	return ledger.StateKey(registry, fieldProject, []byte(slug))
}

// Create 创建项目并初始化四个子合约
func Create(tx *ledger.Tx, registry, caller common.Address, name, slug string, users []common.Address, root common.Hash) (*types.Project, error) {
	taken, err := tx.Has(projectKey(registry, slug))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, types.ErrSlugNameAlreadyExist
	}
	if slug == "" {
		return nil, types.InvalidArgument("empty slug")
	}
	if name == "" {
		return nil, types.InvalidArgument("empty name")
	}

	var deployed [4]common.Address
	for i := range deployed {
		nonce, err := tx.NextNonce(registry)
		if err != nil {
			return nil, err
		}
		deployed[i] = crypto.CreateAddress(registry, nonce)
	}

	project := &types.Project{
		Name:      name,
		Slug:      slug,
		Owner:     caller,
		Account:   deployed[0],
		Network:   deployed[1],
		Messenger: deployed[2],
		Profile:   deployed[3],
	}

	if err := access.Init(tx, project.Account, caller, root); err != nil {
		return nil, err
	}
	if err := profile.Init(tx, project.Profile, caller, project.Account); err != nil {
		return nil, err
	}
	if err := network.Init(tx, project.Network, project.Account); err != nil {
		return nil, err
	}
	if err := messenger.Init(tx, project.Messenger, project.Account); err != nil {
		return nil, err
	}
	if err := tx.SetJSON(projectKey(registry, slug), project); err != nil {
		return nil, err
	}

	if err := tx.Emit(registry, types.EventCreate, nil, map[string]string{
		"slug": slug,
		"name": name,
	}); err != nil {
		return nil, err
	}
	if err := access.EmitUsersAdded(tx, project.Account, users, root); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject 按 slug 查询项目，不存在回滚 ProjectNotFound
func GetProject(tx *ledger.Tx, registry common.Address, slug string) (*types.Project, error) {
	var project types.Project
	ok, err := tx.GetJSON(projectKey(registry, slug), &project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrProjectNotFound
	}
	return &project, nil
}

// GetProjectName 项目名称
func GetProjectName(tx *ledger.Tx, registry common.Address, slug string) (string, error) {
	project, err := GetProject(tx, registry, slug)
	if err != nil {
		return "", err
	}
	return project.Name, nil
}
