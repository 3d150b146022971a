package service

import "errors"

var (
	// ErrNotStarted indicates an operation ran before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrSessionSuperseded indicates the session was replaced by a newer one
	// while the operation was in flight.
	ErrSessionSuperseded = errors.New("session superseded")
)
