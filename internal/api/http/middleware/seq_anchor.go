package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderLedgerSeq 查询时账本最后日志序号
const HeaderLedgerSeq = "X-Social-Seq"

const contextKeySeq = "ledger_seq"

// SeqReader 账本序号读取
type SeqReader interface {
	LastSeq(ctx context.Context) (uint64, error)
}

// SeqAnchor 账本序号锚定中间件
// 读请求在进入处理器前记录账本最后日志序号，客户端可据此从 /ws/logs 续订
type SeqAnchor struct {
	logger *zap.Logger
	ledger SeqReader
}

// NewSeqAnchor 创建序号锚定中间件
func NewSeqAnchor(logger *zap.Logger, ledger SeqReader) *SeqAnchor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeqAnchor{logger: logger, ledger: ledger}
}

// Middleware 返回Gin中间件
func (m *SeqAnchor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.ledger != nil {
			seq, err := m.ledger.LastSeq(c.Request.Context())
			if err != nil {
				m.logger.Warn("读取账本序号失败", zap.Error(err))
			} else {
				c.Set(contextKeySeq, seq)
				c.Header(HeaderLedgerSeq, strconv.FormatUint(seq, 10))
			}
		}
		c.Next()
	}
}

// SeqFrom 锚定的账本序号
func SeqFrom(c *gin.Context) uint64 {
	if v, ok := c.Get(contextKeySeq); ok {
		if seq, ok := v.(uint64); ok {
			return seq
		}
	}
	return 0
}
