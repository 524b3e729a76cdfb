package logging

import (
	"context"

	"go.uber.org/zap"
)

// Context key types
type requestCtxKey struct{}
type sessionCtxKey struct{}
type userKeyCtxKey struct{}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}

	if sessionID := SessionIDFromContext(ctx); sessionID != "" {
		fields = append(fields, zap.String("session.id", sessionID))
	}

	// The user key is the SHA256-derived storage key, never a raw
	// credential subject, so it is safe to log.
	if userKey := UserKeyFromContext(ctx); userKey != "" {
		fields = append(fields, zap.String("user.key", userKey))
	}

	return fields
}

// WithRequestID returns a context carrying the transport request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext returns the request ID, or "" if absent.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// WithSessionID returns a context carrying the conversation session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionCtxKey{}, sessionID)
}

// SessionIDFromContext returns the session ID, or "" if absent.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// WithUserKey returns a context carrying the derived user storage key.
func WithUserKey(ctx context.Context, userKey string) context.Context {
	if userKey == "" {
		return ctx
	}
	return context.WithValue(ctx, userKeyCtxKey{}, userKey)
}

// UserKeyFromContext returns the derived user key, or "" if absent.
func UserKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userKeyCtxKey{}).(string); ok {
		return v
	}
	return ""
}
