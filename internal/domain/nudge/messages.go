package nudge

import "github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/segment"

// Segment-specific texts take priority over the generic signal fallbacks.
var segmentMessages = map[segment.Label]string{
	segment.Impulsive:  "You move quickly. A short pause before committing often catches a hanging piece.",
	segment.Unstable:   "Mistakes are piling up. Slow down and check what your opponent threatens first.",
	segment.Reflective: "You think things through. Trust your read a little sooner.",
	segment.Hesitant:   "You have looked at a lot of squares. Pick the candidate you keep coming back to.",
	segment.Explorer:   "Exploring is good. Now compare your top two candidates and commit.",
}

var reasonMessages = map[Reason]string{
	ReasonHoverBurst: "A lot of hovering this turn. Narrow it down to two candidate moves.",
	ReasonTooSlow:    "Long think. If the lines all look equal, the simplest one usually is.",
	ReasonTooFast:    "That was quick. Did you check your opponent's reply?",
}

// MessageFor selects the nudge text for a segment and trigger reason. It is
// a pure function: segment text first, then the reason fallback.
func MessageFor(seg segment.Label, reason Reason) string {
	if msg, ok := segmentMessages[seg]; ok {
		return msg
	}
	return reasonMessages[reason]
}
