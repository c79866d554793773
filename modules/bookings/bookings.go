// Package bookings handles appointment scheduling against the tenant's
// customer book and service catalog.
package bookings

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Booking struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	StartsAt   time.Time `json:"starts_at"`
	Status     Status    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateParams struct {
	CustomerID uuid.UUID `json:"customer_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	StartsAt   time.Time `json:"starts_at"`
	Notes      string    `json:"notes"`
}

func (p CreateParams) Validate() bool {
	return p.CustomerID != uuid.Nil && p.ServiceID != uuid.Nil && !p.StartsAt.IsZero()
}

// ListFilter narrows the booking list. Zero values mean no filtering.
type ListFilter struct {
	Status Status
	From   time.Time
	To     time.Time
}
