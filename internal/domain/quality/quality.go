// Package quality labels a single move as good or a blunder using a one-ply
// hanging-piece check: after the move is applied, can any opposing reply
// capture on the destination square? This is intentionally not a tactical
// evaluation; it is cheap, deterministic, and enough to drive aggregation.
package quality

import (
	"fmt"

	"github.com/notnil/chess"
)

// Verdict is the oracle output for one labeled move.
type Verdict struct {
	Blunder  bool
	AfterFEN string // position after the move, with the turn passed
	Check    bool   // the labeled move itself gives check
}

// Option applies a configuration option to the Oracle.
type Option func(*Oracle)

// Oracle validates and labels moves against chess positions.
type Oracle struct{}

// New creates a move quality oracle.
func New(opts ...Option) *Oracle {
	o := &Oracle{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Label validates the move against beforeFEN and labels it. An illegal move
// returns ErrIllegalMove; a malformed position returns ErrInvalidPosition.
func (o *Oracle) Label(beforeFEN, from, to, promotion string) (Verdict, error) {
	pos, err := parsePosition(beforeFEN)
	if err != nil {
		return Verdict{}, err
	}

	move, err := decodeMove(pos, from, to, promotion)
	if err != nil {
		return Verdict{}, err
	}

	after := pos.Update(move)
	verdict := Verdict{
		AfterFEN: after.String(),
		Check:    move.HasTag(chess.Check),
	}

	for _, reply := range after.ValidMoves() {
		if reply.HasTag(chess.Capture) && reply.S2() == move.S2() {
			verdict.Blunder = true
			break
		}
	}
	return verdict, nil
}

// parsePosition decodes a FEN string into a position.
func parsePosition(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return chess.NewGame(opt).Position(), nil
}

// decodeMove resolves a from/to pair (plus optional promotion letter) to a
// legal move in pos. Matching against the generated move list is what
// enforces legality and carries the move tags; a bare last-rank promotion
// defaults to queen.
func decodeMove(pos *chess.Position, from, to, promotion string) (*chess.Move, error) {
	for _, mv := range pos.ValidMoves() {
		if mv.S1().String() != from || mv.S2().String() != to {
			continue
		}
		promo := mv.Promo().String()
		if promo == promotion || (promotion == "" && (promo == "" || promo == "q")) {
			return mv, nil
		}
	}
	return nil, fmt.Errorf("%w: %s%s%s", ErrIllegalMove, from, to, promotion)
}
