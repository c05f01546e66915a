package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/upb/studio-dashboard/session"
)

func TestSessionContext(t *testing.T) {
	ctx := context.Background()

	_, resolved := SessionFromContext(ctx)
	assert.False(t, resolved)

	s, resolved := SessionFromContext(WithSession(ctx, nil))
	assert.True(t, resolved, "nil session still marks resolution")
	assert.Nil(t, s)

	want := &session.Session{Role: session.RoleAdmin}
	s, resolved = SessionFromContext(WithSession(ctx, want))
	assert.True(t, resolved)
	assert.Same(t, want, s)
}

func TestGetRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "", GetRequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", GetRequestIDFromContext(withRequestID(context.Background(), "abc")))

	var got string
	h := chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestIDFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, got)
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}
