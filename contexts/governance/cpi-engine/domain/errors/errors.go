package errors

import "errors"

var (
	ErrNoSnapshots         = errors.New("no snapshot dates available")
	ErrDateNotFound        = errors.New("no data found for the specified date")
	ErrUnknownEpoch        = errors.New("unknown percentage epoch")
	ErrAddressRequired     = errors.New("both delegator and recipient addresses are required")
	ErrDelegateNotFound    = errors.New("no delegate found for delegator")
	ErrUpstreamUnavailable = errors.New("upstream store unavailable")
)
