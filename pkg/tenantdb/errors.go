package tenantdb

import "errors"

var (
	// ErrScopeAssignment is returned when the session setting could not be
	// bound to the connection. Infrastructure failure, never a user error,
	// and never a reason to fall back to an unscoped handle.
	ErrScopeAssignment = errors.New("failed to assign tenant scope to connection")

	// ErrNilTenantID is returned when scope binding is attempted with the
	// zero UUID, which would match no RLS policy but must still never reach
	// the database.
	ErrNilTenantID = errors.New("tenant id must not be nil")

	// ErrConnReleased is returned when a scoped connection is used after
	// Release.
	ErrConnReleased = errors.New("scoped connection already released")
)
