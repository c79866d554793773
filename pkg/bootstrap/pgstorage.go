package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/glowdesk/glowdesk/pkg/pg"
)

// seedService is a starter catalog row inserted for every new tenant.
type seedService struct {
	name            string
	durationMinutes int
	priceCents      int64
}

var starterCatalog = []seedService{
	{"Haircut", 45, 4500},
	{"Blow Dry", 30, 3000},
	{"Manicure", 40, 3500},
	{"Facial", 60, 6500},
}

// txBeginner is the slice of pgxpool.Pool the storage needs.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGStorage provisions tenants against Postgres. All writes happen in
// one transaction so a crash mid-bootstrap leaves nothing behind.
type PGStorage struct {
	db txBeginner
}

func NewPGStorage(db txBeginner) *PGStorage {
	return &PGStorage{db: db}
}

const (
	findMembershipQuery = `SELECT tenant_id FROM memberships WHERE external_user_id = $1`

	insertTenantQuery = `
		INSERT INTO tenants (id, slug, external_org_id, name, status)
		VALUES ($1, $2, $3, $4, 'active')`

	insertMembershipQuery = `
		INSERT INTO memberships (tenant_id, external_user_id, role)
		VALUES ($1, $2, 'owner')
		ON CONFLICT (tenant_id, external_user_id) DO NOTHING`

	// Local (transaction-scoped) setting so the seed inserts satisfy the
	// row security policy on services.
	setLocalScopeQuery = `SELECT set_config('app.current_tenant_id', $1, true)`

	insertSeedServiceQuery = `
		INSERT INTO services (tenant_id, name, duration_minutes, price_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, name) DO NOTHING`
)

// Provision inserts the tenant, its owner membership, and the starter
// catalog. A user who already owns a membership short-circuits with the
// existing tenant id; a concurrent duplicate delivery loses on the
// memberships unique index and rolls back whole.
func (s *PGStorage) Provision(ctx context.Context, seed TenantSeed) (Result, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var existing Result
	err = tx.QueryRow(ctx, findMembershipQuery, seed.ExternalUserID).Scan(&existing.TenantID)
	switch {
	case err == nil:
		return existing, nil
	case !pg.IsNotFound(err):
		return Result{}, fmt.Errorf("membership lookup: %w", err)
	}

	if _, err := tx.Exec(ctx, insertTenantQuery,
		seed.TenantID, seed.Slug, seed.ExternalOrgID, seed.Name); err != nil {
		return Result{}, fmt.Errorf("insert tenant: %w", err)
	}

	if _, err := tx.Exec(ctx, insertMembershipQuery, seed.TenantID, seed.ExternalUserID); err != nil {
		return Result{}, fmt.Errorf("insert membership: %w", err)
	}

	if _, err := tx.Exec(ctx, setLocalScopeQuery, seed.TenantID.String()); err != nil {
		return Result{}, fmt.Errorf("set tenant scope: %w", err)
	}

	for _, svc := range starterCatalog {
		if _, err := tx.Exec(ctx, insertSeedServiceQuery,
			seed.TenantID, svc.name, svc.durationMinutes, svc.priceCents); err != nil {
			return Result{}, fmt.Errorf("seed service %q: %w", svc.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return Result{TenantID: seed.TenantID, Created: true}, nil
}
