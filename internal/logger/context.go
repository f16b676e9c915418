package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	ownerIDKey   ctxKey = "owner_id"
	sessionIDKey ctxKey = "session_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithOwnerID tags ctx with the business account the request acts for, so
// every log line below it carries owner_id.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

func OwnerIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ownerIDKey).(string)
	return v
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// FromCtx returns the global logger enriched with whichever of request_id,
// owner_id and session_id are present in ctx.
func FromCtx(ctx context.Context) *zap.Logger {
	fields := make([]zap.Field, 0, 3)
	if v := RequestIDFrom(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := OwnerIDFrom(ctx); v != "" {
		fields = append(fields, zap.String("owner_id", v))
	}
	if v := SessionIDFrom(ctx); v != "" {
		fields = append(fields, zap.String("session_id", v))
	}

	if len(fields) == 0 {
		return L()
	}
	return L().With(fields...)
}
