// Package apperr defines the failure kinds the core returns. Handlers map
// them to HTTP statuses with Status; callers branch with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("global slot cap reached")
	ErrSessionFull      = errors.New("session is full")
	ErrBanned           = errors.New("banned by host")
	ErrProviderFailure  = errors.New("upstream provider failure")
	ErrConflict         = errors.New("conflicting concurrent change")
)

// Status returns the HTTP status for a core error. Unknown errors are
// internal failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrBanned):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrSessionFull),
		errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrProviderFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
