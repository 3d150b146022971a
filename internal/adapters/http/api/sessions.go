// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// SessionDependencies defines the interface for session lifecycle.
type SessionDependencies interface {
	BeginSession(ctx context.Context, userID, gameID string) (SessionView, error)
}

// SessionHandler handles session creation.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// sessionRequest mirrors the JSON schema for POST /sessions.
type sessionRequest struct {
	UserID string `json:"user_id"`
	GameID string `json:"game_id"`
}

func (s sessionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(s.GameID) == "":
		return errors.New("missing game_id")
	}
	return nil
}

// HandlePostSession handles POST /sessions requests.
func (h *SessionHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	view, err := h.deps.BeginSession(r.Context(), req.UserID, req.GameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}
