package customers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/glowdesk/glowdesk/pkg/tenantauth"
)

// Store persists customers through a tenant-scoped connection supplied
// per call.
type Store interface {
	List(ctx context.Context, db tenantauth.DB) ([]Customer, error)
	Get(ctx context.Context, db tenantauth.DB, id uuid.UUID) (*Customer, error)
	Create(ctx context.Context, db tenantauth.DB, p CreateParams) (*Customer, error)
	Update(ctx context.Context, db tenantauth.DB, id uuid.UUID, p UpdateParams) (*Customer, error)
}

type pgStore struct{}

func NewPGStore() Store {
	return pgStore{}
}

const (
	listQuery = `
		SELECT id, name, coalesce(email, ''), coalesce(phone, ''), coalesce(notes, ''), created_at, updated_at
		FROM customers
		ORDER BY name, id`

	getQuery = `
		SELECT id, name, coalesce(email, ''), coalesce(phone, ''), coalesce(notes, ''), created_at, updated_at
		FROM customers
		WHERE id = $1`

	createQuery = `
		INSERT INTO customers (name, email, phone, notes)
		VALUES ($1, nullif($2, ''), nullif($3, ''), nullif($4, ''))
		RETURNING id, name, coalesce(email, ''), coalesce(phone, ''), coalesce(notes, ''), created_at, updated_at`

	updateQuery = `
		UPDATE customers SET
			name = coalesce($2, name),
			email = coalesce(nullif($3, ''), email),
			phone = coalesce(nullif($4, ''), phone),
			notes = coalesce($5, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, coalesce(email, ''), coalesce(phone, ''), coalesce(notes, ''), created_at, updated_at`
)

func (pgStore) List(ctx context.Context, db tenantauth.DB) ([]Customer, error) {
	rows, err := db.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

func (pgStore) Get(ctx context.Context, db tenantauth.DB, id uuid.UUID) (*Customer, error) {
	var c Customer
	err := db.QueryRow(ctx, getQuery, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (pgStore) Create(ctx context.Context, db tenantauth.DB, p CreateParams) (*Customer, error) {
	var c Customer
	err := db.QueryRow(ctx, createQuery, p.Name, p.Email, p.Phone, p.Notes).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &c, nil
}

func (pgStore) Update(ctx context.Context, db tenantauth.DB, id uuid.UUID, p UpdateParams) (*Customer, error) {
	var c Customer
	err := db.QueryRow(ctx, updateQuery, id, p.Name, deref(p.Email), deref(p.Phone), p.Notes).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return &c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
