package setup

import (
	"context"
)

type ContextKey string

const ContextSession ContextKey = "session"

func WrapSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, ContextSession, session)
}

func UnwrapSession(ctx context.Context) *Session {
	return ctx.Value(ContextSession).(*Session)
}
