package social

import (
	logimpl "github.com/weisyn/socialmaker/internal/core/infrastructure/log"
	"github.com/weisyn/socialmaker/internal/core/ledger"
	"github.com/weisyn/socialmaker/pkg/interfaces/config"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
	socialiface "github.com/weisyn/socialmaker/pkg/interfaces/social"
	"go.uber.org/fx"
)

// ModuleParams 合约服务依赖
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Ledger   *ledger.Ledger
	Logger   log.Logger
}

// ModuleOutput 合约服务输出
type ModuleOutput struct {
	fx.Out

	Service  *Service
	Social   socialiface.Service
	Registry socialiface.Registry
}

// Module 返回合约服务模块
func Module() fx.Option {
	return fx.Module("social",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建合约服务
func ProvideServices(params ModuleParams) ModuleOutput {
	logger := logimpl.NewModuleLogger(params.Logger, logimpl.ModuleSocial)
	registryAddr := params.Provider.GetLedger().RegistryAddress
	logger.Infof("注册表合约地址: %s", registryAddr.Hex())

	svc := NewService(params.Ledger, registryAddr, logger)
	return ModuleOutput{
		Service:  svc,
		Social:   svc,
		Registry: svc,
	}
}
