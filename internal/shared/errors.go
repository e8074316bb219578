package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidToken indicates a malformed, expired or wrongly signed token.
	ErrInvalidToken = errors.New("invalid token")
)
