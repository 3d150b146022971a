// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/nudge"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/types"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/session"
)

// NudgeDependencies defines the interface for nudge evaluations.
type NudgeDependencies interface {
	EvaluateNudge(ctx context.Context, req types.NudgeRequest) (*nudge.Nudge, nudge.Cause, error)
}

// NudgeHandler handles post-move nudge evaluations.
type NudgeHandler struct {
	deps NudgeDependencies
}

// NewNudgeHandler creates a new nudge handler.
func NewNudgeHandler(deps NudgeDependencies) *NudgeHandler {
	return &NudgeHandler{deps: deps}
}

// nudgeEvaluateRequest mirrors the JSON schema for POST /nudges/evaluate.
type nudgeEvaluateRequest struct {
	UserID      string `json:"user_id"`
	ThinkTimeMs int64  `json:"think_time_ms"`
}

type nudgeEvaluateResponse struct {
	Fired bool         `json:"fired"`
	Nudge *nudge.Nudge `json:"nudge,omitempty"`
	Cause string       `json:"cause,omitempty"`
}

// HandlePostEvaluate handles POST /nudges/evaluate requests.
func (h *NudgeHandler) HandlePostEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_nudge_evaluate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req nudgeEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}

	fired, cause, err := h.deps.EvaluateNudge(r.Context(), types.NudgeRequest{
		UserID:      req.UserID,
		ThinkTimeMs: req.ThinkTimeMs,
	})
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, nudgeEvaluateResponse{
		Fired: fired != nil,
		Nudge: fired,
		Cause: string(cause),
	})
}
