package history

import (
	"github.com/weisyn/socialmaker/internal/core/ipfs"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
	"go.uber.org/fx"
)

// ModuleParams 历史服务依赖
type ModuleParams struct {
	fx.In

	Ledger   *ledger.Ledger
	Registry socialiface.Registry
	IPFS     *ipfs.Client `optional:"true"`
}

// ModuleOutput 历史服务输出
type ModuleOutput struct {
	fx.Out

	Service *Service
	History socialiface.History
}

// Module 返回历史服务模块
func Module() fx.Option {
	return fx.Module("history",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建历史服务
func ProvideServices(params ModuleParams) ModuleOutput {
	var messages MessageFetcher
	if params.IPFS != nil {
		messages = params.IPFS
	}
	svc := NewService(params.Ledger, params.Registry, messages)
	return ModuleOutput{Service: svc, History: svc}
}
