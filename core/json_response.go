// Package core defines the JSON response envelope and HTTP error taxonomy
// shared by every route handler.
package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSONResponse is the standard response structure.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail carries error information. It never includes raw datastore or
// infrastructure error text; those stay in the server-side logs.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// JSON writes a success envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, JSONResponse{Data: data})
}

// JSONWithMeta writes a success envelope with metadata (pagination, counts).
func JSONWithMeta(w http.ResponseWriter, status int, data any, meta map[string]any) {
	writeJSON(w, status, JSONResponse{Data: data, Meta: meta})
}

// JSONError writes an error envelope. HTTPError values map to their status
// and key; anything else collapses to a generic 500 so internal detail never
// leaks to the client.
func JSONError(w http.ResponseWriter, err error) {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = ErrInternalServerError
	}

	writeJSON(w, httpErr.Code, JSONResponse{
		Error: &ErrorDetail{
			Code:    httpErr.Key,
			Message: http.StatusText(httpErr.Code),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
