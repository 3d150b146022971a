// Package stats maintains the rolling per-user aggregates from discrete
// move, hint and hover observations.
package stats

import (
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
)

// Aggregator folds single observations into a profile. Implementations must
// keep counters monotonic; callers are responsible for per-user serialization
// (the store runs mutations under the user's shard lock).
type Aggregator interface {
	// ApplyMove folds a labeled human move into the profile. Bot
	// observations are a contract-level no-op.
	ApplyMove(p *model.Profile, obs model.Observation, quality model.Quality)

	// ApplyHint increments the hint counter, independent of move aggregation.
	ApplyHint(p *model.Profile)

	// ApplyHover increments the lifetime hover counter.
	ApplyHover(p *model.Profile)
}

// Option applies a configuration option to the incremental aggregator.
type Option func(*Incremental)

// Incremental implements Aggregator with an exact running mean. The mean is
// kept as an unrounded float64 and only rounded at presentation time, so it
// equals the true mean of all samples for any sequence length.
type Incremental struct{}

// New creates an incremental aggregator.
func New(opts ...Option) *Incremental {
	a := &Incremental{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ApplyMove folds one human move into the profile.
func (a *Incremental) ApplyMove(p *model.Profile, obs model.Observation, quality model.Quality) {
	if obs.Bot {
		return
	}

	prev := float64(p.MoveCount)
	p.MoveCount++
	if quality == model.QualityBlunder {
		p.BlunderCount++
	}

	// Exact incremental mean: mean' = (mean*n + sample) / (n+1).
	sample := float64(obs.ThinkTime.Milliseconds())
	p.AvgThinkMs = (p.AvgThinkMs*prev + sample) / float64(p.MoveCount)
}

// ApplyHint increments the hint counter.
func (a *Incremental) ApplyHint(p *model.Profile) {
	p.HintCount++
}

// ApplyHover increments the lifetime hover counter.
func (a *Incremental) ApplyHover(p *model.Profile) {
	p.HoverCount++
}
