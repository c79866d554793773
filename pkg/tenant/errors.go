package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no active tenant matches a key.
	// Inactive tenants intentionally resolve to this same error: a suspended
	// tenant must look identical to a nonexistent one from the outside.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidKey is returned for keys that cannot be a slug or org id.
	ErrInvalidKey = errors.New("invalid tenant key")

	// ErrNoTenantInContext is returned when tenant-scoped code runs without
	// an established tenant scope.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
