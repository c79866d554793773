package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConnectionFailed  = errors.New("failed to open db connection")
	ErrParseConfig       = errors.New("failed to parse db config")
	ErrHealthcheckFailed = errors.New("db healthcheck failed")
	ErrMigrationsFailed  = errors.New("failed to apply migrations")
	ErrMigrationsPath    = errors.New("migrations path not found")
)

// IsNotFound reports whether err is pgx.ErrNoRows, for uniform "not found"
// handling across stores.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation detects unique constraint violations (SQLSTATE 23505).
// Conflict-safe inserts rely on this to distinguish duplicates from real
// failures.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation detects referential integrity violations
// (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// IsInsufficientPrivilege detects SQLSTATE 42501, which row-level security
// raises when a write's tenant does not match the session setting.
func IsInsufficientPrivilege(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42501"
}
