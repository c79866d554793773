package tenantdb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The two sides of the scope bracket. is_local=false makes the setting
// session-scoped, which is why the reset on release is mandatory.
const (
	setScopeSQL   = `SELECT set_config('app.current_tenant_id', $1, false)`
	resetScopeSQL = `SELECT set_config('app.current_tenant_id', '', false)`
)

// rawConn is the slice of a pooled connection the factory needs. Destroy
// closes the physical connection so the pool discards it instead of
// recycling it.
type rawConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
	Destroy()
}

type acquirer interface {
	acquire(ctx context.Context) (rawConn, error)
}

// Factory produces tenant-scoped connections from a shared pgx pool.
type Factory struct {
	src acquirer
	log *slog.Logger
}

// NewFactory creates a factory over pool. A nil logger falls back to the
// process default.
func NewFactory(pool *pgxpool.Pool, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{src: poolAcquirer{pool: pool}, log: log}
}

func newFactory(src acquirer, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{src: src, log: log}
}

// Acquire checks out one physical connection and binds it to tenantID. The
// caller owns the returned Conn for the duration of one request and must
// Release it on every exit path. On any scoping failure the physical
// connection is destroyed and no handle is returned.
func (f *Factory) Acquire(ctx context.Context, tenantID uuid.UUID) (*Conn, error) {
	if tenantID == uuid.Nil {
		return nil, ErrNilTenantID
	}

	raw, err := f.src.acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrScopeAssignment, err)
	}

	if _, err := raw.Exec(ctx, setScopeSQL, tenantID.String()); err != nil {
		// The connection's session state is now unknown; destroying it is
		// the only safe disposal.
		raw.Destroy()
		return nil, errors.Join(ErrScopeAssignment, err)
	}

	return &Conn{raw: raw, tenantID: tenantID, log: f.log}, nil
}

// poolAcquirer adapts *pgxpool.Pool to the internal acquirer interface.
type poolAcquirer struct {
	pool *pgxpool.Pool
}

func (a poolAcquirer) acquire(ctx context.Context) (rawConn, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return poolConn{conn: conn}, nil
}

// poolConn adapts *pgxpool.Conn. Destroy closes the underlying pgx
// connection before releasing, which makes the pool drop it.
type poolConn struct {
	conn *pgxpool.Conn
}

func (c poolConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c poolConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c poolConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c poolConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}

func (c poolConn) Release() {
	c.conn.Release()
}

func (c poolConn) Destroy() {
	_ = c.conn.Conn().Close(context.Background())
	c.conn.Release()
}
