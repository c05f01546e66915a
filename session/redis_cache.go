package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache shares resolved sessions between dashboard instances.
// Redis failures are logged and treated as cache misses.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisCache creates a RedisCache storing keys under prefix
func NewRedisCache(client *redis.Client, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Get returns the cached session for key
func (c *RedisCache) Get(ctx context.Context, key string) (*Session, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("session cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		c.logger.Warn("session cache entry corrupt", zap.Error(err))
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return nil, false
	}
	return &s, true
}

// Set stores s under key for ttl
func (c *RedisCache) Set(ctx context.Context, key string, s *Session, ttl time.Duration) {
	if ttl <= 0 || s == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		c.logger.Warn("session cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.logger.Warn("session cache write failed", zap.Error(err))
	}
}

// Delete removes key
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.Warn("session cache delete failed", zap.Error(err))
	}
}

// Ping checks connectivity, used by readiness checks
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
