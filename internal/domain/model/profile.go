package model

import "math"

// Profile holds the rolling behavioral aggregates for one user. It is owned
// by the aggregation layer and mutated only under the store's per-user lock.
type Profile struct {
	UserID       string
	MoveCount    int     // human moves aggregated so far
	BlunderCount int     // never exceeds MoveCount
	HintCount    int
	HoverCount   int     // lifetime hover events, feeds hovers-per-move
	AvgThinkMs   float64 // exact running mean over human moves, unrounded
	Segment      string  // cached classifier output, derived not authoritative
}

// AvgThinkMsRounded is the presentation value of the running mean.
func (p Profile) AvgThinkMsRounded() int {
	return int(math.Round(p.AvgThinkMs))
}

// AvgThinkSec returns the mean think time in seconds for classification.
func (p Profile) AvgThinkSec() float64 {
	return p.AvgThinkMs / 1000.0
}

// BlunderRatePct returns the rounded blunder percentage, 0 when no moves.
func (p Profile) BlunderRatePct() float64 {
	if p.MoveCount == 0 {
		return 0
	}
	return math.Round(float64(p.BlunderCount) / float64(p.MoveCount) * 100)
}

// HoversPerMove returns the unrounded hover density, 0 when no moves.
func (p Profile) HoversPerMove() float64 {
	if p.MoveCount == 0 {
		return 0
	}
	return float64(p.HoverCount) / float64(p.MoveCount)
}
