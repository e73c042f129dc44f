package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/logger"
	"github.com/seoul-transit/service-route-search/internal/response"
)

// RecoveryMiddleware traps panics from any later handler, logs them with a
// stack trace and answers with the generic failure message.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				logger.With(c.Request.Context(), log).Error("panic recovered",
					zap.Any("panic", p),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				if c.Writer.Written() {
					c.Abort()
					return
				}
				response.InternalError(c)
			}
		}()
		c.Next()
	}
}
