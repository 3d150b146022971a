// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ObservationDependencies
	OpponentDependencies
	NudgeDependencies
	ProfileDependencies
	FlagDependencies
	SessionDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	observationHandler *ObservationHandler
	opponentHandler    *OpponentHandler
	nudgeHandler       *NudgeHandler
	profileHandler     *ProfileHandler
	flagHandler        *FlagHandler
	sessionHandler     *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		observationHandler: NewObservationHandler(deps),
		opponentHandler:    NewOpponentHandler(deps),
		nudgeHandler:       NewNudgeHandler(deps),
		profileHandler:     NewProfileHandler(deps),
		flagHandler:        NewFlagHandler(deps),
		sessionHandler:     NewSessionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("/observations", MetricsMiddleware(s.observationHandler.HandlePostObservation, "observations"))
	mux.HandleFunc("/observations/hover", MetricsMiddleware(s.observationHandler.HandlePostHover, "observations_hover"))
	mux.HandleFunc("/observations/hint", MetricsMiddleware(s.observationHandler.HandlePostHint, "observations_hint"))
	mux.HandleFunc("/opponent/reply", MetricsMiddleware(s.opponentHandler.HandlePostReply, "opponent_reply"))
	mux.HandleFunc("/nudges/evaluate", MetricsMiddleware(s.nudgeHandler.HandlePostEvaluate, "nudges_evaluate"))
	mux.HandleFunc("/profiles/", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profiles"))
	mux.HandleFunc("/flags/", MetricsMiddleware(s.flagHandler.HandleFlags, "flags"))
}

// Re-exported read shapes so handler consumers deal with one package.
type (
	ProfileView = types.ProfileView
	SegmentView = types.SegmentView
	SessionView = types.SessionView
	Flags       = types.Flags
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
