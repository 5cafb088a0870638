package ctxkeys

import (
	"context"

	"github.com/templui/downloadzone/internal/service"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	SessionKey   contextKey = "session"
	ClientIPKey  contextKey = "client_ip"
	RequestIDKey contextKey = "request_id"
)

// Session is the verified bearer session, or nil for anonymous requests.
func Session(ctx context.Context) *service.Session {
	session, _ := ctx.Value(SessionKey).(*service.Session)
	return session
}

func WithSession(ctx context.Context, session *service.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPKey).(string)
	return ip
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
