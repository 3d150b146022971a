// Package simulate generates persona-driven synthetic sessions against a
// running instance and reports the resulting segment distribution.
package simulate

import (
	"math/rand"
	"time"
)

// Persona shapes how a synthetic player behaves: how long they think,
// how much they hover, and how often they lean on hints.
type Persona struct {
	Name       string
	ThinkMin   time.Duration
	ThinkMax   time.Duration
	HoverBurst int     // hovers fired before a move
	HoverEvery int     // a burst happens every N moves; 0 disables
	HintRate   float64 // probability a move is preceded by a hint
}

// Personas returns the built-in roster, one per behavioral archetype.
func Personas() []Persona {
	return []Persona{
		{
			Name:     "impulsive",
			ThinkMin: 300 * time.Millisecond,
			ThinkMax: 1500 * time.Millisecond,
		},
		{
			Name:     "reflective",
			ThinkMin: 6 * time.Second,
			ThinkMax: 9 * time.Second,
		},
		{
			Name:       "hesitant",
			ThinkMin:   4 * time.Second,
			ThinkMax:   6 * time.Second,
			HoverBurst: 5,
			HoverEvery: 1,
			HintRate:   0.3,
		},
		{
			Name:       "explorer",
			ThinkMin:   2 * time.Second,
			ThinkMax:   4 * time.Second,
			HoverBurst: 7,
			HoverEvery: 1,
		},
		{
			Name:     "balanced",
			ThinkMin: 2 * time.Second,
			ThinkMax: 4 * time.Second,
			HintRate: 0.05,
		},
	}
}

// think samples a think time inside the persona's bounds.
func (p Persona) think(rng *rand.Rand) time.Duration {
	if p.ThinkMax <= p.ThinkMin {
		return p.ThinkMin
	}
	return p.ThinkMin + time.Duration(rng.Int63n(int64(p.ThinkMax-p.ThinkMin)))
}

// hovers returns how many hover events precede the given move number.
func (p Persona) hovers(moveNum int) int {
	if p.HoverEvery < 1 || moveNum%p.HoverEvery != 0 {
		return 0
	}
	return p.HoverBurst
}
