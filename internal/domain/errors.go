package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no live row matches
	ErrNotFound = errors.New("not found")

	// ErrTokenNotFound means no live record carries the supplied edit token
	ErrTokenNotFound = errors.New("edit token not found")

	// ErrTokenExpired means the record exists but its edit token is stale
	ErrTokenExpired = errors.New("edit token expired")

	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")

	// ErrHoneypot is returned when the hidden anti-spam field was filled in
	ErrHoneypot = errors.New("honeypot field filled")
)
