// Package customers is the tenant-scoped customer book. Every query
// runs on the request's scoped connection; row visibility is enforced
// by the database, so no statement here filters by tenant.
package customers

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateParams struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (p *CreateParams) Validate() bool {
	p.Name = strings.TrimSpace(p.Name)
	return p.Name != ""
}

type UpdateParams struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

func (p *UpdateParams) Validate() bool {
	if p.Name == nil && p.Email == nil && p.Phone == nil && p.Notes == nil {
		return false
	}
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		if trimmed == "" {
			return false
		}
		p.Name = &trimmed
	}
	return true
}
