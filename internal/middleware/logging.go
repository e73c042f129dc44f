package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/domain/route"
	"github.com/seoul-transit/service-route-search/internal/logger"
)

// LoggerMiddleware writes one access log line per request.
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields,
				zap.String("errors", errs.String()),
				zap.String("error_kind", string(route.KindOf(errs.Last().Err))),
			)
		}

		l := logger.With(c.Request.Context(), log)
		switch {
		case status >= 500:
			l.Error("request completed", fields...)
		case status >= 400:
			l.Warn("request completed", fields...)
		default:
			l.Info("request completed", fields...)
		}
	}
}
