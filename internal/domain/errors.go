package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServiceUnavailable indicates the recommendation service is unreachable
	ErrServiceUnavailable = errors.New("recommendation service is unreachable")

	// ErrMalformedResponse indicates the service answered with a body we could not decode
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNotFound indicates the requested item, detail or trailer does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnexpectedStatus indicates a non-2xx status other than 404
	ErrUnexpectedStatus = errors.New("unexpected status code")
)
