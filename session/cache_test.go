package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCacheKey(t *testing.T) {
	key := CacheKey("a.b.c")
	assert.Len(t, key, 64)
	assert.Equal(t, key, CacheKey("a.b.c"))
	assert.NotEqual(t, key, CacheKey("a.b.d"))
	assert.NotContains(t, key, "a.b.c")
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	s := &Session{Subject: uuid.New(), Role: RoleEditor, AccessToken: "secret.token.value"}

	c.Set(ctx, "k", s, time.Minute)

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, s.Subject, got.Subject)
	assert.Equal(t, RoleEditor, got.Role)
	assert.Empty(t, got.AccessToken, "access tokens are not stored")

	got.Role = RoleAdmin
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, RoleEditor, again.Role, "callers receive copies")

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(10)
	c.now = func() time.Time { return now }

	c.Set(ctx, "short", &Session{Role: RoleUser}, time.Second)
	c.Set(ctx, "long", &Session{Role: RoleUser}, time.Hour)
	c.Set(ctx, "ignored", &Session{Role: RoleUser}, 0)
	assert.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Second)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "long")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	c.Set(ctx, "a", &Session{Role: RoleUser}, time.Minute)
	c.Set(ctx, "b", &Session{Role: RoleUser}, time.Minute)
	_, _ = c.Get(ctx, "a")
	c.Set(ctx, "c", &Session{Role: RoleUser}, time.Minute)

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)

	c.Delete(ctx, "a")
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_CleanupWorkerStops(t *testing.T) {
	c := NewMemoryCache(0)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		c.StartCleanupWorker(time.Millisecond, stop)
		close(done)
	}()
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup worker did not stop")
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, "dashboard:session:", zap.NewNop())

	s := &Session{
		Subject:     uuid.New(),
		Email:       "designer@example.com",
		Role:        RoleDesigner,
		ExpiresAt:   time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		AccessToken: "never.stored.token",
	}

	c.Set(ctx, "k", s, time.Minute)
	assert.True(t, mr.Exists("dashboard:session:k"))
	raw, err := mr.Get("dashboard:session:k")
	require.NoError(t, err)
	assert.NotContains(t, raw, "never.stored.token")

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, s.Subject, got.Subject)
	assert.Equal(t, RoleDesigner, got.Role)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "entry expires with its ttl")

	c.Set(ctx, "zero", s, 0)
	assert.False(t, mr.Exists("dashboard:session:zero"))

	c.Set(ctx, "gone", s, time.Minute)
	c.Delete(ctx, "gone")
	assert.False(t, mr.Exists("dashboard:session:gone"))

	assert.NoError(t, c.Ping(ctx))
}

func TestRedisCache_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, "p:", zap.NewNop())

	require.NoError(t, mr.Set("p:bad", "{not json"))

	_, ok := c.Get(ctx, "bad")
	assert.False(t, ok)
	assert.False(t, mr.Exists("p:bad"))
}

func TestRedisCache_UnavailableIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, "p:", zap.NewNop())
	mr.Close()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	c.Set(ctx, "k", &Session{Role: RoleUser}, time.Minute)
	assert.Error(t, c.Ping(ctx))
}
