// Package salon is tenant self-service: the salon's own profile and
// settings. The tenants table is a directory table, so statements here
// pin rows by the scope's tenant id explicitly.
package salon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/glowdesk/pkg/tenantauth"
)

type Profile struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type RenameParams struct {
	Name string `json:"name"`
}

func (p *RenameParams) Validate() bool {
	p.Name = strings.TrimSpace(p.Name)
	return p.Name != "" && len(p.Name) <= 120
}

type Store interface {
	Profile(ctx context.Context, db tenantauth.DB, tenantID uuid.UUID) (*Profile, error)
	Rename(ctx context.Context, db tenantauth.DB, tenantID uuid.UUID, name string) (*Profile, error)
}

type pgStore struct{}

func NewPGStore() Store {
	return pgStore{}
}

const (
	profileQuery = `
		SELECT t.id, t.slug, t.name, t.status, t.created_at,
		       (SELECT count(*) FROM memberships m WHERE m.tenant_id = t.id)
		FROM tenants t
		WHERE t.id = $1`

	renameQuery = `
		UPDATE tenants SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, slug, name, status, created_at,
		          (SELECT count(*) FROM memberships m WHERE m.tenant_id = tenants.id)`
)

func (pgStore) Profile(ctx context.Context, db tenantauth.DB, tenantID uuid.UUID) (*Profile, error) {
	var p Profile
	err := db.QueryRow(ctx, profileQuery, tenantID).
		Scan(&p.ID, &p.Slug, &p.Name, &p.Status, &p.CreatedAt, &p.MemberCount)
	if err != nil {
		return nil, fmt.Errorf("salon profile: %w", err)
	}
	return &p, nil
}

func (pgStore) Rename(ctx context.Context, db tenantauth.DB, tenantID uuid.UUID, name string) (*Profile, error) {
	var p Profile
	err := db.QueryRow(ctx, renameQuery, tenantID, name).
		Scan(&p.ID, &p.Slug, &p.Name, &p.Status, &p.CreatedAt, &p.MemberCount)
	if err != nil {
		return nil, fmt.Errorf("rename salon: %w", err)
	}
	return &p, nil
}
