package engine

import "errors"

// Sentinel kinds for engine errors. ErrNoLegalMoves signals a terminal
// position, which callers report as game over rather than a failure.
var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrNoLegalMoves    = errors.New("no legal moves")
)
