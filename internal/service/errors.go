package service

import "errors"

// Error taxonomy surfaced to the API layer. Remote gateway failures are
// wrapped with %w and pass through unchanged; they are retryable by the
// user, never retried here.
var (
	// ErrInvalidState marks an operation attempted with a missing
	// precondition: no authenticated user, empty cart, illegal status
	// transition.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput marks malformed caller input: blank product id,
	// out-of-range rating.
	ErrInvalidInput = errors.New("invalid input")
)
