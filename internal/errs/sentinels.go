// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client/service layers.
var (
	// ErrEmptyUsername indicates a login attempt with a blank username.
	ErrEmptyUsername = errors.New("username must not be empty")

	// ErrEmptyPassword indicates a login attempt with a blank password.
	ErrEmptyPassword = errors.New("password must not be empty")

	// ErrUnauthorized indicates the backend rejected the credentials (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnprocessable indicates the backend rejected the request shape (422).
	ErrUnprocessable = errors.New("unprocessable request")

	// ErrNotLoggedIn indicates an operation that needs a session was called without one.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired indicates the stored token was rejected and has been cleared.
	ErrSessionExpired = errors.New("session expired")
)
