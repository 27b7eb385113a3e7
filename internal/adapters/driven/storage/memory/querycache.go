package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

// Ensure QueryCache implements the interface.
var _ driven.QueryCache = (*QueryCache)(nil)

type cacheEntry struct {
	pool      []domain.AssetCandidate
	expiresAt time.Time
}

// QueryCache is an in-memory TTL cache of federation results.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewQueryCache creates an empty in-memory query cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached pool for a key if present and unexpired.
func (c *QueryCache) Get(_ context.Context, key string) ([]domain.AssetCandidate, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.pool, true
}

// Set stores a pool under key for ttl.
func (c *QueryCache) Set(_ context.Context, key string, pool []domain.AssetCandidate, ttl time.Duration) {
	if ttl < time.Second {
		ttl = time.Second
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{pool: pool, expiresAt: c.now().Add(ttl)}
}

// Clear drops every cached pool.
func (c *QueryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// SetClock overrides the time source. Test hook.
func (c *QueryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
