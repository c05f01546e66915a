package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/studio-dashboard/session"
)

// Context key type to avoid collisions
type contextKey string

// SessionKey is the context key for the resolved session
const SessionKey contextKey = "session"

// GetRequestIDFromContext returns the id assigned by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithSession attaches a resolved session to the context. A nil session is
// recorded too, so later handlers know resolution already ran.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionFromContext returns the session attached by the edge filter.
// The second result reports whether resolution ran at all.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	val := ctx.Value(SessionKey)
	if val == nil {
		return nil, false
	}
	s, ok := val.(*session.Session)
	return s, ok
}
