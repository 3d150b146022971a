// Package types contains read-model types shared across the application.
package types

import "github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"

// SubmitRequest is one move submitted for labeling and aggregation.
type SubmitRequest struct {
	UserID      string
	GameID      string
	Ply         int
	Bot         bool
	ThinkTimeMs int64
	BeforeFEN   string
	From        string
	To          string
	Promotion   string
}

// SubmitResult is the synchronous outcome of a submitted move.
type SubmitResult struct {
	Quality  model.Quality
	Deduped  bool
	AfterFEN string
}

// NudgeRequest carries the per-move signals for a nudge evaluation.
type NudgeRequest struct {
	UserID      string
	ThinkTimeMs int64
}

// ProfileView is the API shape for a user profile.
type ProfileView struct {
	UserID        string  `json:"user_id"`
	MoveCount     int     `json:"move_count"`
	BlunderCount  int     `json:"blunder_count"`
	HintCount     int     `json:"hint_count"`
	HoverCount    int     `json:"hover_count"`
	AvgThinkMs    int     `json:"avg_think_ms"`
	BlunderRate   float64 `json:"blunder_rate_pct"`
	HoversPerMove float64 `json:"hovers_per_move"`
	Segment       string  `json:"segment"`
}

// SegmentView is the API shape for a classification result.
type SegmentView struct {
	UserID    string `json:"user_id"`
	Segment   string `json:"segment"`
	Rationale string `json:"rationale"`
}

// SessionView is the API shape for a freshly started session.
type SessionView struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	GameID    string `json:"game_id"`
}

// Flags are the externally configured intervention toggles for one user.
type Flags struct {
	ConfirmMoves bool `json:"confirm_moves_enabled"`
	Nudges       bool `json:"nudges_enabled"`
}
