package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the tenant lifecycle state. Only active tenants resolve;
// anything else is invisible to request traffic.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Tenant represents one salon business. ID is the stable internal
// identifier every owned row carries as a foreign key; it never changes once
// assigned. Slug and ExternalOrgID are lookup keys only.
type Tenant struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	ExternalOrgID string    `json:"external_org_id"`
	Name          string    `json:"name"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Active reports whether the tenant may serve traffic.
func (t *Tenant) Active() bool {
	return t.Status == StatusActive
}

// Directory maps an external tenant key (slug or provider org id) to the
// internal tenant identity. The single source of truth for "does this tenant
// exist and is it active".
type Directory interface {
	// Resolve returns the active tenant matching key, trying the slug first
	// and the raw provider org id as a fallback. Returns ErrTenantNotFound
	// when no active tenant matches either way.
	Resolve(ctx context.Context, key string) (*Tenant, error)
}
