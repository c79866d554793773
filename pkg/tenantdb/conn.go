package tenantdb

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// resetTimeout bounds the scope reset at release time. The request context
// may already be cancelled when Release runs, so the reset uses its own.
const resetTimeout = 3 * time.Second

// Conn is a database handle bound to exactly one tenant for the duration of
// one request. Every query issued through it is filtered by the datastore's
// row-level-security policies to the bound tenant.
type Conn struct {
	raw      rawConn
	tenantID uuid.UUID
	log      *slog.Logger
	released atomic.Bool
}

// TenantID returns the tenant this connection is bound to.
func (c *Conn) TenantID() uuid.UUID {
	return c.tenantID
}

func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if c.released.Load() {
		return pgconn.CommandTag{}, ErrConnReleased
	}
	return c.raw.Exec(ctx, sql, args...)
}

func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if c.released.Load() {
		return nil, ErrConnReleased
	}
	return c.raw.Query(ctx, sql, args...)
}

func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if c.released.Load() {
		return errRow{err: ErrConnReleased}
	}
	return c.raw.QueryRow(ctx, sql, args...)
}

// Begin starts a transaction on the scoped connection. The transaction
// inherits the session's tenant scope.
func (c *Conn) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.released.Load() {
		return nil, ErrConnReleased
	}
	return c.raw.Begin(ctx)
}

// Release clears the tenant scope and returns the connection to the pool.
// If the reset fails, the connection is destroyed instead: a connection
// whose scope state is uncertain must never be recycled. Safe for repeated
// calls.
func (c *Conn) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()

	if _, err := c.raw.Exec(ctx, resetScopeSQL); err != nil {
		c.log.ErrorContext(ctx, "failed to reset tenant scope, destroying connection",
			"tenant_id", c.tenantID.String(), "error", err)
		c.raw.Destroy()
		return
	}
	c.raw.Release()
}

// errRow satisfies pgx.Row for use-after-release misuse.
type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }
