// Package tenantdb issues database connections scoped to a single tenant.
//
// Row-level-security policies on every tenant-owned table read the session
// setting app.current_tenant_id. The factory binds that setting to one
// physical pooled connection at acquisition time and clears it before the
// connection can return to the pool, so a connection reused by a later
// request never carries a previous tenant's scope. This is strategy (a):
// set per acquired connection, reset on release — applied uniformly. The
// package never scopes via connection-startup parameters; mixing the two
// approaches is how cross-tenant leaks happen.
//
// Scoping is fail-closed. If the set_config call fails, the connection is
// destroyed rather than handed out, and the caller gets ErrScopeAssignment —
// there is no such thing as a degraded, unscoped handle. Likewise, if the
// reset at release time fails, the connection is destroyed instead of being
// returned to the pool still scoped.
package tenantdb
