// Package tenant is the tenant directory: the mapping from external tenant
// keys (organization slugs and provider org ids) to the internal, stable
// tenant identity.
//
// Resolution is fail-closed. A key resolves only when an active tenant row
// matches it; suspended and unknown tenants are indistinguishable to the
// caller. The slug is tried before the raw provider org id because slugs
// are the externally stable identifier users see, while raw ids exist for
// clients that carry nothing else.
//
// A CachedDirectory adds read-through caching with a short TTL. Tenant
// lifecycle changes are rare relative to request volume, so eventual
// consistency within the TTL window is acceptable; no invalidation protocol
// is required for correctness.
package tenant
