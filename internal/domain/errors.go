package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUpstreamFailure  = errors.New("payment provider unreachable")
	ErrUpstreamRejected = errors.New("payment provider rejected the request")
	ErrCacheUnavailable = errors.New("cache unavailable")
)
