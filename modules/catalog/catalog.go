// Package catalog manages the salon's service offerings. Reads are open
// to all members; writes require the owner or admin role.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateParams struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

func (p *CreateParams) Validate() bool {
	p.Name = strings.TrimSpace(p.Name)
	return p.Name != "" && p.DurationMinutes > 0 && p.PriceCents >= 0
}

type UpdateParams struct {
	Name            *string `json:"name"`
	DurationMinutes *int    `json:"duration_minutes"`
	PriceCents      *int64  `json:"price_cents"`
}

func (p *UpdateParams) Validate() bool {
	if p.Name == nil && p.DurationMinutes == nil && p.PriceCents == nil {
		return false
	}
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		if trimmed == "" {
			return false
		}
		p.Name = &trimmed
	}
	if p.DurationMinutes != nil && *p.DurationMinutes <= 0 {
		return false
	}
	if p.PriceCents != nil && *p.PriceCents < 0 {
		return false
	}
	return true
}
