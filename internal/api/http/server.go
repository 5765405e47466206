// Package http 提供社交网络节点的 HTTP API 服务
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apiconfig "github.com/weisyn/socialmaker/internal/config/api"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/log"
)

// shutdownTimeout 优雅关闭等待上限
const shutdownTimeout = 5 * time.Second

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    *apiconfig.APIOptions
	logger     log.Logger
	addr       string
}

// NewServer 创建HTTP服务器
func NewServer(router *gin.Engine, options *apiconfig.APIOptions, logger log.Logger) *Server {
	if options == nil {
		options = apiconfig.New(nil).GetOptions()
	}
	return &Server{
		router:  router,
		options: options,
		logger:  logger,
	}
}

// Handler 路由处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 实际监听地址，启动前为空
func (s *Server) Addr() string {
	return s.addr
}

// Start 监听端口并在后台提供服务，端口被占用时立即返回错误
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.options.Addr())
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", s.options.Addr(), err)
	}
	s.addr = listener.Addr().String()

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()

	s.logger.Infof("HTTP服务器启动成功，监听地址: %s", s.addr)
	s.logger.Infof("API端点: http://%s/api/v1/", s.addr)
	return nil
}

// Stop 优雅关闭服务器，等待处理中的请求完成
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("正在关闭HTTP服务器")

	stopCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}

	s.logger.Info("HTTP服务器已关闭")
	return nil
}
