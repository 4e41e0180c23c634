package errors

import "errors"

var (
	ErrAPIKeyRequired     = errors.New("api key is required")
	ErrAPIKeyInvalid      = errors.New("invalid or inactive api key")
	ErrOwnerRequired      = errors.New("owner is required")
	ErrInvalidRateLimit   = errors.New("rate limit must be between 1 and 1000")
	ErrKeyNotFound        = errors.New("no api key found for the given owner")
	ErrKeyConflict        = errors.New("api key conflict")
	ErrLimiterUnavailable = errors.New("rate limiting store unavailable")
)
