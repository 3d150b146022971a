// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// Quality is the oracle's verdict on a single human move.
type Quality string

const (
	// QualityGood marks a move whose piece cannot be immediately recaptured.
	QualityGood Quality = "good"
	// QualityBlunder marks a move that hangs the moved piece.
	QualityBlunder Quality = "blunder"
	// QualityNone is used for bot moves, which are never labeled.
	QualityNone Quality = ""
)

// Observation is one submitted move. Bot moves flow through the same path but
// must never mutate a profile.
type Observation struct {
	UserID    string
	GameID    string        // game the move belongs to
	Ply       int           // half-move number; (GameID, Ply) keys idempotency
	Bot       bool          // true when the opponent engine made the move
	ThinkTime time.Duration // wall time the player spent before committing
	From      string        // origin square, e.g. "e2"
	To        string        // destination square, e.g. "e4"
	Promotion string        // optional promotion piece letter, e.g. "q"
}

// Key returns the idempotency key for this observation.
func (o Observation) Key() string {
	return o.GameID + "#" + strconv.Itoa(o.Ply)
}
