package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores resolved tenants keyed by external key. Directory lookups
// are rare-change data, so a short TTL is correct: eventual consistency
// within the TTL window is acceptable, and nothing depends on invalidation.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// DefaultCacheSize bounds the in-memory cache.
const DefaultCacheSize = 1000

// memoryCache is the default in-process cache with TTL expiry and a cheap
// eviction pass when full.
type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]cacheItem
	maxSize int
}

type cacheItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// NewMemoryCache creates a bounded in-memory cache. maxSize values below 1
// fall back to DefaultCacheSize.
func NewMemoryCache(maxSize int) Cache {
	if maxSize < 1 {
		maxSize = DefaultCacheSize
	}
	return &memoryCache{
		items:   make(map[string]cacheItem),
		maxSize: maxSize,
	}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		c.Delete(ctx, key)
		return nil, false
	}
	return item.tenant, true
}

func (c *memoryCache) Set(_ context.Context, key string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictLocked()
	}
	c.items[key] = cacheItem{tenant: t, expiresAt: time.Now().Add(ttl)}
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// evictLocked drops expired entries; if none have expired it removes the
// entry closest to expiry. Called with the write lock held.
func (c *memoryCache) evictLocked() {
	now := time.Now()
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			continue
		}
		if oldestKey == "" || item.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = key, item.expiresAt
		}
	}
	if len(c.items) >= c.maxSize && oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// noopCache disables caching; every resolution hits the directory.
type noopCache struct{}

// NewNoopCache returns a cache that never stores anything.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*Tenant, bool)             { return nil, false }
func (noopCache) Set(context.Context, string, *Tenant, time.Duration)     {}
func (noopCache) Delete(context.Context, string)                          {}
