// Package nudge decides when a behavioral message may surface. All state is
// explicit and all transitions are driven by a caller-supplied clock, so the
// Idle -> Visible -> Idle machine is unit-testable without timers.
package nudge

import (
	"math/rand"
	"sync"
	"time"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/segment"
)

// Scheduling constants.
const (
	warmupMoves         = 6
	cooldown            = 20 * time.Second
	defaultProbability  = 0.45
	hoverWindowLength   = 10 * time.Second
	hoverBurstThreshold = 8
	slowMoveThreshold   = 4200 * time.Millisecond
	fastMoveThreshold   = 900 * time.Millisecond
	maxVisible          = 10 * time.Second
	minVisible          = 4500 * time.Millisecond
	softHideGrace       = 900 * time.Millisecond
)

// Reason is the trigger that matched for a fired nudge.
type Reason string

const (
	ReasonHoverBurst Reason = "hoverBurst"
	ReasonTooSlow    Reason = "tooSlow"
	ReasonTooFast    Reason = "tooFast"
)

// Cause names why an evaluation did not fire, for metrics.
type Cause string

const (
	CauseDisabled    Cause = "disabled"
	CauseWarmingUp   Cause = "warming_up"
	CauseVisible     Cause = "visible"
	CauseCooldown    Cause = "cooldown"
	CauseNoSignal    Cause = "no_signal"
	CauseProbability Cause = "probability"
)

// HoverWindow tracks hover events inside a fixed-length burst window.
type HoverWindow struct {
	Start time.Time
	Count int
}

// State is the per-session nudge state machine. The zero value is Idle.
type State struct {
	LastShownAt time.Time
	Visible     bool
	ShownAt     time.Time
	HardHideAt  time.Time // auto-hide at max visible duration
	SoftHideAt  time.Time // armed by the first move after showing
	Hover       HoverWindow
}

// Nudge is a fired behavioral message.
type Nudge struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Input carries the per-move signals an evaluation looks at.
type Input struct {
	MoveCount int
	ThinkTime time.Duration
	Segment   segment.Label
	Enabled   bool // external nudges toggle for this user
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithRand sets the random source, used by tests for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithProbability overrides the fire probability; tests pin it to 0 or 1.
func WithProbability(p float64) Option {
	return func(s *Scheduler) {
		if p >= 0 && p <= 1 {
			s.probability = p
		}
	}
}

// Scheduler gates nudges behind warm-up, visibility, cooldown and a
// probability roll. Safe for concurrent use across sessions; the per-session
// State itself is owned by its session.
type Scheduler struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

// New creates a scheduler with configuration options.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // pacing, not security
		probability: defaultProbability,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordHover folds a hover event into the burst window, resetting the
// window when the gap since its start exceeds the window length.
func (s *Scheduler) RecordHover(st *State, now time.Time) {
	if st.Hover.Start.IsZero() || now.Sub(st.Hover.Start) > hoverWindowLength {
		st.Hover = HoverWindow{Start: now, Count: 1}
		return
	}
	st.Hover.Count++
}

// Tick applies any elapsed hide deadline. Whichever of the hard and soft
// deadlines elapses first transitions the state back to Idle.
func (s *Scheduler) Tick(st *State, now time.Time) {
	if !st.Visible {
		return
	}
	hardDue := !st.HardHideAt.IsZero() && !now.Before(st.HardHideAt)
	softDue := !st.SoftHideAt.IsZero() && !now.Before(st.SoftHideAt)
	if hardDue || softDue {
		st.Visible = false
		st.HardHideAt = time.Time{}
		st.SoftHideAt = time.Time{}
	}
}

// NoteMove arms the soft hide after a move committed while a nudge is
// visible: it fires once the nudge has been visible for the minimum
// duration, but never sooner than a short grace delay after the move.
func (s *Scheduler) NoteMove(st *State, now time.Time) {
	if !st.Visible || !st.SoftHideAt.IsZero() {
		return
	}
	earliest := st.ShownAt.Add(minVisible)
	grace := now.Add(softHideGrace)
	if grace.After(earliest) {
		st.SoftHideAt = grace
	} else {
		st.SoftHideAt = earliest
	}
}

// Evaluate runs the trigger chain for one completed human move. It returns
// the fired nudge, or nil with the suppression cause.
func (s *Scheduler) Evaluate(st *State, now time.Time, in Input) (*Nudge, Cause) {
	switch {
	case !in.Enabled:
		return nil, CauseDisabled
	case in.MoveCount < warmupMoves:
		return nil, CauseWarmingUp
	case st.Visible:
		return nil, CauseVisible
	case !st.LastShownAt.IsZero() && now.Sub(st.LastShownAt) < cooldown:
		return nil, CauseCooldown
	}

	reason, ok := s.matchReason(st, now, in)
	if !ok {
		return nil, CauseNoSignal
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()
	if roll >= s.probability {
		return nil, CauseProbability
	}

	st.Visible = true
	st.ShownAt = now
	st.LastShownAt = now
	st.HardHideAt = now.Add(maxVisible)
	st.SoftHideAt = time.Time{}
	st.Hover = HoverWindow{} // the burst is consumed by the nudge

	return &Nudge{Reason: reason, Message: MessageFor(in.Segment, reason)}, ""
}

// matchReason checks candidate triggers in priority order, first match wins.
func (s *Scheduler) matchReason(st *State, now time.Time, in Input) (Reason, bool) {
	burstLive := !st.Hover.Start.IsZero() && now.Sub(st.Hover.Start) <= hoverWindowLength
	switch {
	case burstLive && st.Hover.Count >= hoverBurstThreshold:
		return ReasonHoverBurst, true
	case in.ThinkTime >= slowMoveThreshold:
		return ReasonTooSlow, true
	case in.ThinkTime <= fastMoveThreshold:
		return ReasonTooFast, true
	default:
		return "", false
	}
}
