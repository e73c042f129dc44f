package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/seoul-transit/service-route-search/internal/logger"
)

const (
	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"

	maxRequestIDLength = 64
)

// RequestIDMiddleware reuses a sane inbound X-Request-ID or generates a new one,
// and attaches it to the request context and the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
