package quality

import "errors"

// Sentinel kinds for move labeling errors.
var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrIllegalMove     = errors.New("illegal move")
)
