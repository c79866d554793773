package tenant

import (
	"context"
	"time"
)

// DefaultCacheTTL is short on purpose: tenant creation and deactivation are
// rare relative to request volume, and a suspended tenant must stop
// resolving within this window.
const DefaultCacheTTL = 5 * time.Minute

// CachedDirectory is a read-through cache over another Directory. Only
// successful resolutions are cached; not-found and infrastructure errors
// always re-hit the source so a recovering tenant is visible immediately.
type CachedDirectory struct {
	source Directory
	cache  Cache
	ttl    time.Duration
}

// NewCachedDirectory wraps source with cache. A nil cache falls back to the
// in-memory default; non-positive TTLs fall back to DefaultCacheTTL.
func NewCachedDirectory(source Directory, cache Cache, ttl time.Duration) *CachedDirectory {
	if cache == nil {
		cache = NewMemoryCache(DefaultCacheSize)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedDirectory{source: source, cache: cache, ttl: ttl}
}

func (d *CachedDirectory) Resolve(ctx context.Context, key string) (*Tenant, error) {
	if t, ok := d.cache.Get(ctx, key); ok {
		// A cached tenant may have been suspended since it was stored.
		// Fail closed and drop the stale entry.
		if !t.Active() {
			d.cache.Delete(ctx, key)
			return nil, ErrTenantNotFound
		}
		return t, nil
	}

	t, err := d.source.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	d.cache.Set(ctx, key, t, d.ttl)
	return t, nil
}
