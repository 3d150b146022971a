package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrUnknownKind = errors.New("unknown telemetry kind")
)
