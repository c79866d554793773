// Package bootstrap provisions a new tenant from identity-provider
// webhooks. A user.created delivery becomes one tenant, one owner
// membership, and a seeded service catalog, all in a single database
// transaction. Redelivered events are acknowledged without creating
// anything twice.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/glowdesk/pkg/logger"
	"github.com/glowdesk/glowdesk/pkg/slug"
)

// Config holds the webhook endpoint settings.
type Config struct {
	WebhookSecret string        `env:"BOOTSTRAP_WEBHOOK_SECRET,required"`
	MaxAge        time.Duration `env:"BOOTSTRAP_WEBHOOK_MAX_AGE" envDefault:"5m"`
}

// EventUserCreated is the only event type that triggers provisioning.
const EventUserCreated = "user.created"

// UserCreated is the payload of a user.created delivery.
type UserCreated struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	OrgID   string `json:"org_id"`
	OrgName string `json:"org_name"`
}

// TenantSeed is everything the storage layer needs to provision a
// tenant for a newly registered owner.
type TenantSeed struct {
	TenantID       uuid.UUID
	Slug           string
	ExternalOrgID  string
	Name           string
	ExternalUserID string
}

// Result reports what a Provision call did. Created is false when the
// user already had a tenant, in which case TenantID is the existing one.
type Result struct {
	TenantID uuid.UUID
	Created  bool
}

// Storage persists a tenant seed atomically. Implementations must be
// safe to call twice with the same external user id.
type Storage interface {
	Provision(ctx context.Context, seed TenantSeed) (Result, error)
}

// Service turns verified provider events into provisioned tenants.
type Service struct {
	store Storage
	log   *slog.Logger
}

func NewService(store Storage, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

const slugSuffixLen = 6

// Provision creates the tenant for a new user. The call is idempotent:
// a redelivery for an already-provisioned user returns the existing
// tenant id with Created=false.
func (s *Service) Provision(ctx context.Context, evt UserCreated) (Result, error) {
	if evt.UserID == "" || evt.OrgID == "" {
		return Result{}, fmt.Errorf("%w: user_id and org_id are required", ErrInvalidEvent)
	}

	name := evt.OrgName
	if name == "" {
		name = evt.Name
	}
	if name == "" {
		name = "New Salon"
	}

	seed := TenantSeed{
		TenantID:       uuid.New(),
		Slug:           slug.MakeUnique(name, slugSuffixLen),
		ExternalOrgID:  evt.OrgID,
		Name:           name,
		ExternalUserID: evt.UserID,
	}

	res, err := s.store.Provision(ctx, seed)
	if err != nil {
		return Result{}, fmt.Errorf("provision tenant: %w", err)
	}

	if res.Created {
		s.log.InfoContext(ctx, "tenant provisioned",
			logger.TenantID(res.TenantID.String()),
			logger.UserID(evt.UserID),
			slog.String("slug", seed.Slug))
	} else {
		s.log.InfoContext(ctx, "duplicate provisioning delivery ignored",
			logger.TenantID(res.TenantID.String()),
			logger.UserID(evt.UserID))
	}
	return res, nil
}
