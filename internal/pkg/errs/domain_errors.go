package errs

import "errors"

// Error taxonomy shared by every layer. Domain and infra errors are marked
// with one of these so the HTTP boundary can map them without knowing the
// originating package.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidInput    = errors.New("invalid input")

	// Promotion validation failures. A mark carries only the reference's own
	// mark, so promotion lookups get their own not-found sentinel.
	ErrPromotionNotFound = errors.New("promotion code not found")
	ErrBelowMinimum      = errors.New("order below promotion minimum")
	ErrNotStarted        = errors.New("promotion not started")
	ErrExpired           = errors.New("promotion expired")
	ErrUsageExhausted    = errors.New("promotion usage exhausted")
	ErrNotApplicable     = errors.New("promotion not applicable")
	ErrInactive          = errors.New("promotion inactive")

	// Booking errors
	ErrEmptyOrder        = errors.New("empty order")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")

	ErrConflict       = errors.New("conflict")
	ErrInfrastructure = errors.New("infrastructure failure")
)
