package errors

import "errors"

// Common error types for the attendance portal
var (
	// Session errors
	ErrMissingCredentials = errors.New("missing credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")

	// Remote API errors
	ErrNetworkOrServer   = errors.New("network or server error")
	ErrMalformedResponse = errors.New("malformed response")

	// Input errors
	ErrValidation = errors.New("validation failed")
	ErrInvalidID  = errors.New("invalid identifier")
)
