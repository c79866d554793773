package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/glowdesk/pkg/tenantauth"
)

type Store interface {
	List(ctx context.Context, db tenantauth.DB, f ListFilter) ([]Booking, error)
	Create(ctx context.Context, db tenantauth.DB, p CreateParams) (*Booking, error)
	// Cancel transitions a scheduled booking to cancelled. Completed or
	// already-cancelled bookings are not found by the guard clause.
	Cancel(ctx context.Context, db tenantauth.DB, id uuid.UUID) (*Booking, error)
}

type pgStore struct{}

func NewPGStore() Store {
	return pgStore{}
}

const (
	bookingColumns = `id, customer_id, service_id, starts_at, status, coalesce(notes, ''), created_at, updated_at`

	listQuery = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR status = $1)
		  AND ($2::timestamptz IS NULL OR starts_at >= $2)
		  AND ($3::timestamptz IS NULL OR starts_at < $3)
		ORDER BY starts_at`

	createQuery = `
		INSERT INTO bookings (customer_id, service_id, starts_at, notes)
		VALUES ($1, $2, $3, nullif($4, ''))
		RETURNING ` + bookingColumns

	cancelQuery = `
		UPDATE bookings SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + bookingColumns
)

func scanBooking(row interface{ Scan(...any) error }, b *Booking) error {
	return row.Scan(&b.ID, &b.CustomerID, &b.ServiceID, &b.StartsAt, &b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
}

func (pgStore) List(ctx context.Context, db tenantauth.DB, f ListFilter) ([]Booking, error) {
	from := nullableTime(f.From)
	to := nullableTime(f.To)
	rows, err := db.Query(ctx, listQuery, string(f.Status), from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

func (pgStore) Create(ctx context.Context, db tenantauth.DB, p CreateParams) (*Booking, error) {
	var b Booking
	if err := scanBooking(db.QueryRow(ctx, createQuery, p.CustomerID, p.ServiceID, p.StartsAt, p.Notes), &b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &b, nil
}

func (pgStore) Cancel(ctx context.Context, db tenantauth.DB, id uuid.UUID) (*Booking, error) {
	var b Booking
	if err := scanBooking(db.QueryRow(ctx, cancelQuery, id), &b); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	return &b, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
