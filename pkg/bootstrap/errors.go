package bootstrap

import "errors"

var (
	// ErrInvalidSignature covers missing, malformed, stale, or
	// mismatched webhook signatures. Deliveries failing verification
	// are rejected before the payload is parsed.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrUnsupportedEvent marks event types this endpoint does not
	// handle. They are acknowledged, not retried.
	ErrUnsupportedEvent = errors.New("unsupported event type")

	// ErrInvalidEvent marks payloads missing required identity fields.
	ErrInvalidEvent = errors.New("invalid event payload")
)
