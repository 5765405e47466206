// Package websocket 提供账本事件日志的 WebSocket 订阅
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	wstypes "github.com/weisyn/socialmaker/internal/api/websocket/types"
	"github.com/weisyn/socialmaker/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/socialmaker/pkg/types"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// Server WebSocket服务器
// 连接可带查询参数（同 /api/v1/logs）自动建立一个订阅，
// 也可通过 social_subscribe / social_unsubscribe 消息管理多个订阅。
type Server struct {
	logger              *zap.Logger
	subscriptionManager *SubscriptionManager
	upgrader            websocket.Upgrader
}

// NewServer 创建WebSocket服务器
func NewServer(logger *zap.Logger, eventBus event.EventBus, logs LogReader, bufferSize int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:              logger,
		subscriptionManager: NewSubscriptionManager(logger, eventBus, logs, bufferSize),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// connection 单个连接，写操作串行化
type connection struct {
	id     string
	conn   *websocket.Conn
	logger *zap.Logger
	mu     sync.Mutex
}

func (c *connection) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *connection) sendLog(subscriptionID string, entry *types.LogEntry, replayed bool) error {
	return c.writeJSON(wstypes.Notification{
		JSONRPC: "2.0",
		Method:  wstypes.MethodSubscription,
		Params: wstypes.NotificationParams{
			Subscription: subscriptionID,
			Result:       entry,
			Replayed:     replayed,
		},
	})
}

func (c *connection) sendResult(id, result interface{}) {
	if err := c.writeJSON(wstypes.Response{JSONRPC: "2.0", ID: id, Result: result}); err != nil {
		c.logger.Debug("Failed to send response", zap.Error(err))
	}
}

func (c *connection) sendError(id interface{}, code int, message string, data interface{}) {
	resp := wstypes.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &wstypes.Error{Code: code, Message: message, Data: data},
	}
	if err := c.writeJSON(resp); err != nil {
		c.logger.Debug("Failed to send error response", zap.Error(err))
	}
}

// HandleWebSocket 处理WebSocket连接（Gin Handler）
func (s *Server) HandleWebSocket(c *gin.Context) {
	query := c.Request.URL.Query()
	var initial *types.LogFilter
	if len(query) > 0 {
		filter, err := apitypes.ParseLogFilter(query)
		if err != nil {
			_ = c.Error(err)
			return
		}
		initial = &filter
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	conn := &connection{id: uuid.NewString(), conn: ws, logger: s.logger}
	defer func() {
		s.subscriptionManager.CleanupByOwner(conn.id)
		if err := ws.Close(); err != nil {
			s.logger.Debug("关闭WebSocket连接失败", zap.Error(err))
		}
	}()

	s.logger.Info("WebSocket connection established",
		zap.String("conn", conn.id),
		zap.String("remote_addr", ws.RemoteAddr().String()))

	if initial != nil {
		if !s.subscribe(c, conn, nil, *initial) {
			return
		}
	}

	for {
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket connection closed unexpectedly", zap.Error(err))
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		s.handleMessage(c, conn, message)
	}

	s.logger.Info("WebSocket connection closed", zap.String("conn", conn.id))
}

func (s *Server) handleMessage(c *gin.Context, conn *connection, message []byte) {
	var request wstypes.Request
	if err := json.Unmarshal(message, &request); err != nil {
		conn.sendError(nil, wstypes.CodeParseError, "Parse error", nil)
		return
	}

	switch request.Method {
	case wstypes.MethodSubscribe:
		var params wstypes.SubscribeParams
		if len(request.Params) > 0 {
			if err := json.Unmarshal(request.Params, &params); err != nil {
				conn.sendError(request.ID, wstypes.CodeInvalidParams, "Invalid params", err.Error())
				return
			}
		}
		s.subscribe(c, conn, request.ID, params.Filter)

	case wstypes.MethodUnsubscribe:
		var ids []string
		if err := json.Unmarshal(request.Params, &ids); err != nil || len(ids) == 0 {
			conn.sendError(request.ID, wstypes.CodeInvalidParams, "Missing subscription ID", nil)
			return
		}
		conn.sendResult(request.ID, s.subscriptionManager.Unsubscribe(conn.id, ids[0]))

	default:
		conn.sendError(request.ID, wstypes.CodeMethodNotFound, "Method not found", request.Method)
	}
}

// subscribe 先回复订阅ID，再开始回放与推送
func (s *Server) subscribe(c *gin.Context, conn *connection, requestID interface{}, filter types.LogFilter) bool {
	sub, err := s.subscriptionManager.Subscribe(c.Request.Context(), conn.id, filter)
	if err != nil {
		conn.sendError(requestID, wstypes.CodeServerError, "Failed to subscribe", err.Error())
		return false
	}
	conn.sendResult(requestID, sub.ID)
	s.subscriptionManager.Start(sub, conn.sendLog)
	return true
}

// RegisterRoutes 注册WebSocket路由到Gin
func (s *Server) RegisterRoutes(router gin.IRouter) {
	router.GET("/ws/logs", s.HandleWebSocket)
}

// SubscriptionCount 当前订阅数
func (s *Server) SubscriptionCount() int {
	return s.subscriptionManager.Count()
}
