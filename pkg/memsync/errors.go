package memsync

import "errors"

var (
	// ErrNotConfigured is returned when required configuration is missing
	ErrNotConfigured = errors.New("membership sync not configured")

	// ErrUserNotFound is returned when an event references an unresolvable user
	ErrUserNotFound = errors.New("user not found in membership source")

	// ErrTransportFailure is returned when delivery fails at the connection level
	ErrTransportFailure = errors.New("delivery transport failure")

	// ErrRetryExhausted is returned after every delivery attempt got a non-200 response
	ErrRetryExhausted = errors.New("delivery failed after multiple retries")

	// ErrRecordNotFound is returned when no sync record exists for a user
	ErrRecordNotFound = errors.New("sync record not found")

	// ErrInvalidEvent is returned for events that cannot be dispatched
	ErrInvalidEvent = errors.New("invalid membership event")
)
