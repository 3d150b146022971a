package engine

import (
	"time"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
)

// fastMoveThreshold is the think time under which a move counts as "fast"
// for the behavior memory.
const fastMoveThreshold = 1500 * time.Millisecond

// Memory is the short-term behavioral memory for one active game. Counters
// increment on moves that confirm a signal and decay (floor 0) on moves that
// contradict it, so isolated fast moves or isolated blunders never flip the
// engine mode; sustained patterns do.
type Memory struct {
	FastMoves int
	Blunders  int
}

// Observe folds one labeled human move into the memory.
func (m *Memory) Observe(thinkTime time.Duration, q model.Quality) {
	if thinkTime < fastMoveThreshold {
		m.FastMoves++
	} else if m.FastMoves > 0 {
		m.FastMoves--
	}

	if q == model.QualityBlunder {
		m.Blunders++
	} else if m.Blunders > 0 {
		m.Blunders--
	}
}

// Mode is the engine's strategy for the next reply.
type Mode string

const (
	// ModeBaseline plays near-best moves with believable variance.
	ModeBaseline Mode = "baseline"
	// ModeBait deliberately offers a weaker move to a player rushing moves.
	ModeBait Mode = "bait"
	// ModeTrap escalates pressure after repeated blunders.
	ModeTrap Mode = "trap"
)

// Mode thresholds: two confirming signals are required, which gives the
// memory its hysteresis.
const (
	trapBlunderThreshold = 2
	baitFastThreshold    = 2
)

// ModeFor derives the engine mode from the memory. Trap wins over Bait.
func ModeFor(m Memory) Mode {
	switch {
	case m.Blunders >= trapBlunderThreshold:
		return ModeTrap
	case m.FastMoves >= baitFastThreshold:
		return ModeBait
	default:
		return ModeBaseline
	}
}
