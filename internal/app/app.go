// Package app 装配并运行社交网络节点
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// App 节点应用
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 阻塞到收到退出信号后停止应用
	Wait()
}

type internalApp struct {
	bootstrap *Bootstrap
}

// Stop 停止应用，等待存储落盘
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待 SIGINT/SIGTERM
func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	fmt.Printf("\n收到信号 %v，正在退出...\n", sig)

	if err := a.Stop(); err != nil {
		fmt.Printf("停止应用时出错: %v\n", err)
	}
}

// Start 加载配置、装配模块并启动节点
func Start(appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	opts.applyOverrides(cfg)
	opts.appConfig = cfg
	if err := createDataDirectories(cfg); err != nil {
		return nil, err
	}

	bootstrap := NewBootstrap(opts)
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: bootstrap}, nil
}
