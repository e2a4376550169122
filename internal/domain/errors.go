package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrMissingCredentials is returned when the provider API key is not configured
	ErrMissingCredentials = errors.New("provider API key not configured")

	// ErrUpstreamFailure is returned when an upstream provider request fails
	ErrUpstreamFailure = errors.New("upstream provider request failed")
)
