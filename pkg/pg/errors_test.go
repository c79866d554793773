package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/glowdesk/glowdesk/pkg/pg"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		assert.True(t, pg.IsNotFound(pgx.ErrNoRows))
		assert.True(t, pg.IsNotFound(fmt.Errorf("lookup: %w", pgx.ErrNoRows)))
		assert.False(t, pg.IsNotFound(nil))
		assert.False(t, pg.IsNotFound(errors.New("other")))
	})

	t.Run("unique violation", func(t *testing.T) {
		t.Parallel()

		dup := &pgconn.PgError{Code: "23505"}
		assert.True(t, pg.IsUniqueViolation(dup))
		assert.True(t, pg.IsUniqueViolation(fmt.Errorf("insert: %w", dup)))
		assert.False(t, pg.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
		assert.False(t, pg.IsUniqueViolation(nil))
	})

	t.Run("foreign key violation", func(t *testing.T) {
		t.Parallel()

		assert.True(t, pg.IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
		assert.False(t, pg.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	})

	t.Run("insufficient privilege", func(t *testing.T) {
		t.Parallel()

		assert.True(t, pg.IsInsufficientPrivilege(&pgconn.PgError{Code: "42501"}))
		assert.False(t, pg.IsInsufficientPrivilege(errors.New("denied")))
	})
}
