package config

import "errors"

var (
	// ErrInvalidConfig indicates a loaded configuration failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)
