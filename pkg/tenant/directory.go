package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
)

// Querier is the slice of pgx that the directory needs. *pgxpool.Pool
// satisfies it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// validKey keeps lookups to plausible slug/org-id shapes so arbitrary
// request input never reaches the database.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,127}$`)

// PGDirectory resolves tenants against the tenants table. The table carries
// no row-level security; it is the registry the scoping mechanism is built
// on, not tenant-owned data.
type PGDirectory struct {
	db Querier
}

// NewPGDirectory creates a directory backed by db.
func NewPGDirectory(db Querier) *PGDirectory {
	return &PGDirectory{db: db}
}

const (
	resolveBySlugQuery = `
		SELECT id, slug, external_org_id, name, status, created_at, updated_at
		FROM tenants
		WHERE slug = $1 AND status = 'active'`

	resolveByOrgIDQuery = `
		SELECT id, slug, external_org_id, name, status, created_at, updated_at
		FROM tenants
		WHERE external_org_id = $1 AND status = 'active'`
)

// Resolve looks up by slug first (the externally stable identifier users
// see), then by provider org id for clients that only carry the raw id.
// Both paths require status = 'active'; everything else fails closed with
// ErrTenantNotFound.
func (d *PGDirectory) Resolve(ctx context.Context, key string) (*Tenant, error) {
	if !validKey.MatchString(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	t, err := d.scanOne(ctx, resolveBySlugQuery, key)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resolve tenant by slug: %w", err)
	}

	t, err = d.scanOne(ctx, resolveByOrgIDQuery, key)
	if err == nil {
		return t, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	return nil, fmt.Errorf("resolve tenant by org id: %w", err)
}

func (d *PGDirectory) scanOne(ctx context.Context, query, key string) (*Tenant, error) {
	var t Tenant
	err := d.db.QueryRow(ctx, query, key).Scan(
		&t.ID, &t.Slug, &t.ExternalOrgID, &t.Name, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
