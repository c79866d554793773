package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRow struct {
	id  uuid.UUID
	err error
}

func (r staticRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*uuid.UUID)) = r.id
	return nil
}

// fakeTx records statements in order. The embedded pgx.Tx panics on
// anything the storage is not supposed to call.
type fakeTx struct {
	pgx.Tx

	membershipRow staticRow
	execErr       map[string]error // keyed by SQL substring

	execs      []string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	if !strings.Contains(sql, "FROM memberships") {
		panic("unexpected query: " + sql)
	}
	return t.membershipRow
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	for substr, err := range t.execErr {
		if strings.Contains(sql, substr) {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func testSeed() TenantSeed {
	return TenantSeed{
		TenantID:       uuid.New(),
		Slug:           "glow-desk-a1b2c3",
		ExternalOrgID:  "org_1",
		Name:           "Glow Desk",
		ExternalUserID: "user_1",
	}
}

func countContaining(execs []string, substr string) int {
	n := 0
	for _, sql := range execs {
		if strings.Contains(sql, substr) {
			n++
		}
	}
	return n
}

func TestPGStorageProvision(t *testing.T) {
	t.Parallel()

	t.Run("new user writes everything in one transaction", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{membershipRow: staticRow{err: pgx.ErrNoRows}}
		store := NewPGStorage(&fakeBeginner{tx: tx})
		seed := testSeed()

		res, err := store.Provision(context.Background(), seed)
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.Equal(t, seed.TenantID, res.TenantID)
		assert.True(t, tx.committed)

		require.GreaterOrEqual(t, len(tx.execs), 3+len(starterCatalog))
		assert.Contains(t, tx.execs[0], "INSERT INTO tenants")
		assert.Contains(t, tx.execs[1], "INSERT INTO memberships")
		// Scope is set only after the tenant row exists, and locally so
		// it dies with the transaction.
		assert.Contains(t, tx.execs[2], "set_config('app.current_tenant_id', $1, true)")
		assert.Equal(t, len(starterCatalog), countContaining(tx.execs, "INSERT INTO services"))
	})

	t.Run("existing membership short-circuits", func(t *testing.T) {
		t.Parallel()

		existing := uuid.New()
		tx := &fakeTx{membershipRow: staticRow{id: existing}}
		store := NewPGStorage(&fakeBeginner{tx: tx})

		res, err := store.Provision(context.Background(), testSeed())
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, existing, res.TenantID)
		assert.Empty(t, tx.execs, "no writes for an already-provisioned user")
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	})

	t.Run("failed write rolls the whole transaction back", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{
			membershipRow: staticRow{err: pgx.ErrNoRows},
			execErr:       map[string]error{"INSERT INTO services": errors.New("permission denied")},
		}
		store := NewPGStorage(&fakeBeginner{tx: tx})

		_, err := store.Provision(context.Background(), testSeed())
		require.Error(t, err)
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	})

	t.Run("begin failure surfaces", func(t *testing.T) {
		t.Parallel()

		store := NewPGStorage(&fakeBeginner{beginErr: errors.New("pool closed")})
		_, err := store.Provision(context.Background(), testSeed())
		assert.Error(t, err)
	})
}
