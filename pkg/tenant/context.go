package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is private to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant stores the resolved tenant in ctx.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant from ctx.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok
}

// IDFromContext retrieves just the internal tenant id.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// LoggerExtractor injects the tenant id into log records when a scope is
// established.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
