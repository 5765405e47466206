package middleware

import (
	"github.com/gin-gonic/gin"
	apitypes "github.com/weisyn/socialmaker/internal/api/types"
	"github.com/weisyn/socialmaker/pkg/types"
	"go.uber.org/zap"
)

const contextKeyRevert = "revert_code"

// ErrorHandler 错误处理中间件
// 处理器通过 c.Error 报告错误，这里统一转换为 Problem Details
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		problem := problemFor(c, err)

		if problem.Status >= 500 {
			logger.Error("HTTP error",
				zap.String("code", problem.Code),
				zap.String("traceId", problem.TraceID),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		} else {
			logger.Debug("HTTP request rejected",
				zap.String("code", problem.Code),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		problem.WriteJSON(c.Writer)
		c.Abort()
	}
}

// WriteProblemDetails 写入 Problem Details 响应并中止
func WriteProblemDetails(c *gin.Context, problem *apitypes.ProblemDetails) {
	c.Header("Content-Type", "application/problem+json")
	c.JSON(problem.Status, problem)
	c.Abort()
}

// WriteError 错误转换为 Problem Details 写入响应
func WriteError(c *gin.Context, err error) {
	WriteProblemDetails(c, problemFor(c, err))
}

func problemFor(c *gin.Context, err error) *apitypes.ProblemDetails {
	problem := apitypes.FromError(err)
	problem.Instance = c.Request.URL.Path
	if id := GetRequestID(c); id != "" {
		problem.TraceID = id
	}
	if revert, ok := types.AsRevert(err); ok {
		c.Set(contextKeyRevert, revert.Name)
	}
	return problem
}
