package authn

import "errors"

var (
	// ErrUnauthenticated is returned when no verified user identity can be
	// derived from the request.
	ErrUnauthenticated = errors.New("no authenticated user")

	// ErrMissingOrganization is returned when a verified user carries no
	// organization claim. Such users cannot reach tenant-scoped routes.
	ErrMissingOrganization = errors.New("no organization in session")

	// ErrMissingSigningKey is returned when the service is constructed
	// without a key.
	ErrMissingSigningKey = errors.New("signing key is required")

	// ErrInvalidToken covers malformed, tampered, or expired session tokens.
	ErrInvalidToken = errors.New("invalid session token")
)
