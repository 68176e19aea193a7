// Package apperr defines the sentinel error taxonomy shared by all services.
// Handlers translate these into HTTP responses; services never return raw
// gorm errors for the conditions below.
package apperr

import "errors"

var (
	// ErrInvalidInput marks a malformed identifier or missing required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized marks a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated actor that does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks an absent resource.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate unique field.
	ErrConflict = errors.New("conflict")
)
