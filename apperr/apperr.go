// Package apperr defines the error taxonomy shared by all services.
// Handlers translate these sentinels to HTTP status codes with Status.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrRaceFull          = errors.New("race is full")
	ErrAlreadyJoined     = errors.New("already joined")
	ErrNotJoinable       = errors.New("race is not joinable")
	ErrInsufficientFunds = errors.New("not enough points")
	ErrAlreadyOwned      = errors.New("already owned")
	ErrItemNotOwned      = errors.New("item not owned")
	ErrValidation        = errors.New("invalid input")
)

// Status maps an error to an HTTP status code. Unrecognized errors
// are treated as internal.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrRaceFull),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrNotJoinable),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrAlreadyOwned),
		errors.Is(err, ErrItemNotOwned):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
