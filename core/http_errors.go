package core

import "net/http"

// HTTPError represents an HTTP error with a status code and a stable machine
// key. The key is what clients branch on; human wording may change freely.
type HTTPError struct {
	Code int    // HTTP status code
	Key  string // stable error key (e.g. "tenant_not_found")
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)

// Tenant-context errors surfaced by the authorization wrapper. Each maps one
// of the resolution failure modes to a stable status before any business
// handler runs.
var (
	ErrMissingOrganization = HTTPError{Code: http.StatusBadRequest, Key: "missing_organization"}
	ErrTenantNotFound      = HTTPError{Code: http.StatusNotFound, Key: "tenant_not_found"}
)

// NewHTTPError creates a custom HTTP error with the given status code and key.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}
