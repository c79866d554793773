// Package tenantauth is the composition point of the tenant isolation
// mechanism: it authenticates the request, resolves the tenant directory
// entry, binds a scoped database connection, and only then hands control to
// business code. A handler behind this wrapper can never observe a request
// with a missing or invalid tenant scope.
package tenantauth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/glowdesk/glowdesk/core"
	"github.com/glowdesk/glowdesk/pkg/authn"
	"github.com/glowdesk/glowdesk/pkg/logger"
	"github.com/glowdesk/glowdesk/pkg/tenant"
	"github.com/glowdesk/glowdesk/pkg/tenantdb"
)

// DB is the query surface handlers receive. Every query issued through it
// is row-level-security filtered to the request's tenant.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ScopedConn is a DB bound to one tenant that must be released after use.
type ScopedConn interface {
	DB
	TenantID() uuid.UUID
	Release()
}

// Factory produces scoped connections. *tenantdb.Factory is adapted via
// Connections.
type Factory interface {
	Acquire(ctx context.Context, tenantID uuid.UUID) (ScopedConn, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, tenantID uuid.UUID) (ScopedConn, error)

func (f FactoryFunc) Acquire(ctx context.Context, tenantID uuid.UUID) (ScopedConn, error) {
	return f(ctx, tenantID)
}

// Connections adapts the concrete connection factory to the Factory
// interface.
func Connections(f *tenantdb.Factory) Factory {
	return FactoryFunc(func(ctx context.Context, tenantID uuid.UUID) (ScopedConn, error) {
		return f.Acquire(ctx, tenantID)
	})
}

// Authenticator extracts the verified session from a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*authn.Session, error)
}

// Scope is the bundle handed to business handlers: the tenant-scoped
// connection, the resolved tenant, and the authenticated session.
type Scope struct {
	Conn    ScopedConn
	Tenant  *tenant.Tenant
	Session *authn.Session
}

// Handler is a tenant-scoped route handler. A returned error is rendered
// through the standard JSON error envelope; core.HTTPError values keep
// their status, anything else collapses to a logged 500.
type Handler func(w http.ResponseWriter, r *http.Request, scope *Scope) error

// Middleware wires the authenticator, directory, and connection factory
// together. It holds no per-request state and caches nothing across
// invocations.
type Middleware struct {
	auth  Authenticator
	dir   tenant.Directory
	conns Factory
	log   *slog.Logger
}

// New creates the wrapper. All three collaborators are required.
func New(auth Authenticator, dir tenant.Directory, conns Factory, log *slog.Logger) *Middleware {
	if log == nil {
		log = slog.Default()
	}
	return &Middleware{auth: auth, dir: dir, conns: conns, log: log}
}

// RouteOption configures a single wrapped route.
type RouteOption func(*routeConfig)

type routeConfig struct {
	roles []string
}

// WithRoles restricts the route to sessions holding at least one of the
// given roles.
func WithRoles(roles ...string) RouteOption {
	return func(c *routeConfig) {
		c.roles = append(c.roles, roles...)
	}
}

// Wrap turns a tenant-scoped Handler into an http.HandlerFunc. The
// sequence is strict: authenticate, check roles, resolve tenant, bind
// scope, run handler. No step is skipped or reordered, and no query can
// run before the scope assignment completes. The scoped connection is
// released on every exit path.
func (m *Middleware) Wrap(h Handler, opts ...RouteOption) http.HandlerFunc {
	var cfg routeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		session, err := m.auth.Authenticate(r)
		if err != nil {
			switch {
			case errors.Is(err, authn.ErrMissingOrganization):
				core.JSONError(w, core.ErrMissingOrganization)
			default:
				core.JSONError(w, core.ErrUnauthorized)
			}
			return
		}

		if len(cfg.roles) > 0 && !session.HasAnyRole(cfg.roles...) {
			core.JSONError(w, core.ErrForbidden)
			return
		}

		ten, err := m.dir.Resolve(ctx, session.OrgKey())
		if err != nil {
			switch {
			case errors.Is(err, tenant.ErrTenantNotFound), errors.Is(err, tenant.ErrInvalidKey):
				core.JSONError(w, core.ErrTenantNotFound)
			default:
				m.log.ErrorContext(ctx, "tenant resolution failed",
					logger.Error(err), logger.UserID(session.UserID))
				core.JSONError(w, core.ErrInternalServerError)
			}
			return
		}

		conn, err := m.conns.Acquire(ctx, ten.ID)
		if err != nil {
			// Infrastructure failure. Fatal to the request: there is no
			// fallback to an unscoped connection.
			m.log.ErrorContext(ctx, "tenant scope assignment failed",
				logger.Error(err), logger.TenantID(ten.ID.String()))
			core.JSONError(w, core.ErrInternalServerError)
			return
		}
		defer conn.Release()

		ctx = tenant.WithTenant(ctx, ten)
		scope := &Scope{Conn: conn, Tenant: ten, Session: session}

		if err := h(w, r.WithContext(ctx), scope); err != nil {
			var httpErr core.HTTPError
			if !errors.As(err, &httpErr) {
				m.log.ErrorContext(ctx, "handler failed",
					logger.Error(err), logger.TenantID(ten.ID.String()))
			}
			core.JSONError(w, err)
		}
	}
}
