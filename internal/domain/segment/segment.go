// Package segment classifies rolling behavioral aggregates into a segment
// label. The classifier is a pure, total function over its input stats.
package segment

// Label is a behavioral segment.
type Label string

const (
	WarmingUp  Label = "WarmingUp"
	Unstable   Label = "Unstable"
	Impulsive  Label = "Impulsive"
	Reflective Label = "Reflective"
	Hesitant   Label = "Hesitant"
	Explorer   Label = "Explorer"
	Balanced   Label = "Balanced"
)

// Classification thresholds. The rule order below is load-bearing: lack of
// data and a dangerously high error rate are checked before any style label,
// so an early-session player making mistakes is never praised as Reflective.
const (
	minMovesForSignal    = 6
	unstableBlunderPct   = 35.0
	impulsiveMaxThinkSec = 2.2
	impulsiveBlunderPct  = 25.0
	reflectiveThinkSec   = 6.0
	reflectiveMaxBlunder = 20.0
	hesitantThinkSec     = 4.0
	hesitantHoversPerMove = 4.0
	explorerHoversPerMove = 5.0
)

// Stats is the classifier input, derived from a profile.
type Stats struct {
	MoveCount     int
	AvgThinkSec   float64
	BlunderRatePct float64
	HoverCount    int
	HoversPerMove float64 // unrounded; rounding is presentation-only
}

// Result pairs the label with a human-readable rationale.
type Result struct {
	Label     Label
	Rationale string
}

// rule is one (predicate, label) pair. Rules are evaluated top-down and the
// first match wins.
type rule struct {
	when      func(Stats) bool
	label     Label
	rationale string
}

var rules = []rule{
	{
		when:      func(s Stats) bool { return s.MoveCount < minMovesForSignal },
		label:     WarmingUp,
		rationale: "not enough moves yet for a reliable read",
	},
	{
		when:      func(s Stats) bool { return s.BlunderRatePct >= unstableBlunderPct },
		label:     Unstable,
		rationale: "blunder rate is high regardless of pace",
	},
	{
		when: func(s Stats) bool {
			return s.AvgThinkSec <= impulsiveMaxThinkSec && s.BlunderRatePct >= impulsiveBlunderPct
		},
		label:     Impulsive,
		rationale: "fast moves paired with an elevated blunder rate",
	},
	{
		when: func(s Stats) bool {
			return s.AvgThinkSec >= reflectiveThinkSec && s.BlunderRatePct <= reflectiveMaxBlunder
		},
		label:     Reflective,
		rationale: "long deliberation with few mistakes",
	},
	{
		when: func(s Stats) bool {
			return s.AvgThinkSec >= hesitantThinkSec && s.HoversPerMove >= hesitantHoversPerMove
		},
		label:     Hesitant,
		rationale: "slow moves with heavy piece hovering",
	},
	{
		when:      func(s Stats) bool { return s.HoversPerMove >= explorerHoversPerMove },
		label:     Explorer,
		rationale: "many hovers per move at a normal pace",
	},
}

// Classify maps stats to a segment. It always returns a label; Balanced is
// the fallthrough when no rule matches.
func Classify(s Stats) Result {
	for _, r := range rules {
		if r.when(s) {
			return Result{Label: r.label, Rationale: r.rationale}
		}
	}
	return Result{Label: Balanced, Rationale: "no dominant behavioral signal"}
}

// Labels enumerates every segment, for metrics and validation.
func Labels() []Label {
	return []Label{WarmingUp, Unstable, Impulsive, Reflective, Hesitant, Explorer, Balanced}
}
