package common

import "errors"

// Business logic errors
var (
	// Store errors
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrRecordNotFound   = errors.New("record not found")

	// Lifecycle errors
	ErrInvalidTransition     = errors.New("invalid lifecycle transition")
	ErrPartialReconciliation = errors.New("republish saved but archived copy was not removed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidLink  = errors.New("link is not a valid absolute URL")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// IsRetryable reports whether an operation failing with err is worth
// retrying against the store. Not-found and transition guards are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
