package session

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache stores resolved sessions keyed by a hash of their access token
type Cache interface {
	Get(ctx context.Context, key string) (*Session, bool)
	Set(ctx context.Context, key string, s *Session, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// CacheKey derives the cache key for an access token. Raw tokens never
// leave the process as keys.
func CacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	key       string
	session   *Session
	expiresAt time.Time
	element   *list.Element
}

// MemoryCache is an in-process LRU cache with per-entry expiry.
// Thread-safe implementation using sync.Mutex.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	lruList *list.List
	maxSize int
	now     func() time.Time
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates a MemoryCache holding at most maxSize sessions
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
		lruList: list.New(),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns a copy of the cached session, or false if missing or expired
func (c *MemoryCache) Get(_ context.Context, key string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists || !c.now().Before(entry.expiresAt) {
		c.misses++
		if exists {
			c.removeEntry(key)
		}
		return nil, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return entry.session.Clone(), true
}

// Set stores s for ttl. Non-positive ttls are ignored.
func (c *MemoryCache) Set(_ context.Context, key string, s *Session, ttl time.Duration) {
	if ttl <= 0 || s == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := s.Clone()
	stored.AccessToken = ""
	expiresAt := c.now().Add(ttl)

	if entry, exists := c.entries[key]; exists {
		entry.session = stored
		entry.expiresAt = expiresAt
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &memoryEntry{
		key:       key,
		session:   stored,
		expiresAt: expiresAt,
	}
	entry.element = c.lruList.PushFront(key)
	c.entries[key] = entry
}

// Delete removes key from the cache
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeEntry(key)
}

// Len returns the number of cached sessions, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

// Stats returns the hit and miss counters
func (c *MemoryCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// CleanupExpired removes all expired entries and returns how many were dropped
func (c *MemoryCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			c.removeEntry(key)
			removed++
		}
	}
	return removed
}

// StartCleanupWorker periodically drops expired entries until stopCh closes
func (c *MemoryCache) StartCleanupWorker(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanupExpired()
		case <-stopCh:
			return
		}
	}
}

// must be called with lock held
func (c *MemoryCache) removeEntry(key string) {
	if entry, exists := c.entries[key]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, key)
	}
}

// must be called with lock held
func (c *MemoryCache) evictLRU() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	key := back.Value.(string)
	c.lruList.Remove(back)
	delete(c.entries, key)
}
