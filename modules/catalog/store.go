package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/glowdesk/glowdesk/pkg/tenantauth"
)

type Store interface {
	List(ctx context.Context, db tenantauth.DB, includeInactive bool) ([]Service, error)
	Create(ctx context.Context, db tenantauth.DB, p CreateParams) (*Service, error)
	Update(ctx context.Context, db tenantauth.DB, id uuid.UUID, p UpdateParams) (*Service, error)
	Deactivate(ctx context.Context, db tenantauth.DB, id uuid.UUID) error
}

type pgStore struct{}

func NewPGStore() Store {
	return pgStore{}
}

const (
	serviceColumns = `id, name, duration_minutes, price_cents, active, created_at, updated_at`

	listQuery = `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE active OR $1
		ORDER BY name`

	createQuery = `
		INSERT INTO services (name, duration_minutes, price_cents)
		VALUES ($1, $2, $3)
		RETURNING ` + serviceColumns

	updateQuery = `
		UPDATE services SET
			name = coalesce($2, name),
			duration_minutes = coalesce($3, duration_minutes),
			price_cents = coalesce($4, price_cents),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + serviceColumns

	deactivateQuery = `
		UPDATE services SET active = false, updated_at = now()
		WHERE id = $1 AND active
		RETURNING id`
)

func scanService(row interface{ Scan(...any) error }, s *Service) error {
	return row.Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.CreatedAt, &s.UpdatedAt)
}

func (pgStore) List(ctx context.Context, db tenantauth.DB, includeInactive bool) ([]Service, error) {
	rows, err := db.Query(ctx, listQuery, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := scanService(rows, &s); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}

func (pgStore) Create(ctx context.Context, db tenantauth.DB, p CreateParams) (*Service, error) {
	var s Service
	if err := scanService(db.QueryRow(ctx, createQuery, p.Name, p.DurationMinutes, p.PriceCents), &s); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &s, nil
}

func (pgStore) Update(ctx context.Context, db tenantauth.DB, id uuid.UUID, p UpdateParams) (*Service, error) {
	var s Service
	if err := scanService(db.QueryRow(ctx, updateQuery, id, p.Name, p.DurationMinutes, p.PriceCents), &s); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return &s, nil
}

func (pgStore) Deactivate(ctx context.Context, db tenantauth.DB, id uuid.UUID) error {
	var deactivated uuid.UUID
	if err := db.QueryRow(ctx, deactivateQuery, id).Scan(&deactivated); err != nil {
		return fmt.Errorf("deactivate service: %w", err)
	}
	return nil
}
