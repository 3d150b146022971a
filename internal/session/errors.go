package session

import "errors"

var (
	// ErrSessionNotFound indicates the session id or user has no live session.
	ErrSessionNotFound = errors.New("session not found")
)
