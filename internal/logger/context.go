package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const requestIDKey contextKey = iota

// ContextWithRequestID returns a copy of ctx carrying the request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID stored by ContextWithRequestID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// With returns log annotated with the request ID from ctx when one is present.
func With(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id, ok := RequestIDFromContext(ctx); ok {
		return log.With(zap.String("request_id", id))
	}
	return log
}
