// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/quality"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/types"
)

// ObservationDependencies defines the interface for move and telemetry intake.
type ObservationDependencies interface {
	SubmitObservation(ctx context.Context, req types.SubmitRequest) (types.SubmitResult, error)
	RecordHover(ctx context.Context, userID, sessionID string) bool
	RecordHint(ctx context.Context, userID string) bool
}

// ObservationHandler handles move submissions and telemetry intake.
type ObservationHandler struct {
	deps ObservationDependencies
}

// NewObservationHandler creates a new observation handler.
func NewObservationHandler(deps ObservationDependencies) *ObservationHandler {
	return &ObservationHandler{deps: deps}
}

// observationRequest mirrors the JSON schema for POST /observations.
type observationRequest struct {
	UserID      string `json:"user_id"`
	GameID      string `json:"game_id"`
	Ply         int    `json:"ply"`
	Bot         bool   `json:"bot"`
	ThinkTimeMs int64  `json:"think_time_ms"`
	BeforeFEN   string `json:"before_fen"`
	From        string `json:"from"`
	To          string `json:"to"`
	Promotion   string `json:"promotion"`
}

func (o observationRequest) validate() error {
	switch {
	case strings.TrimSpace(o.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(o.GameID) == "":
		return errors.New("missing game_id")
	case o.Ply < 1:
		return errors.New("ply must be positive")
	case o.ThinkTimeMs < 0:
		return errors.New("think_time_ms must not be negative")
	}
	if o.Bot {
		return nil
	}
	switch {
	case strings.TrimSpace(o.BeforeFEN) == "":
		return errors.New("missing before_fen")
	case strings.TrimSpace(o.From) == "":
		return errors.New("missing from")
	case strings.TrimSpace(o.To) == "":
		return errors.New("missing to")
	}
	return nil
}

type observationResponse struct {
	Quality  string `json:"quality"`
	Deduped  bool   `json:"deduped"`
	AfterFEN string `json:"after_fen,omitempty"`
}

// HandlePostObservation handles POST /observations requests.
func (h *ObservationHandler) HandlePostObservation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_observation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req observationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.SubmitObservation(r.Context(), types.SubmitRequest{
		UserID:      req.UserID,
		GameID:      req.GameID,
		Ply:         req.Ply,
		Bot:         req.Bot,
		ThinkTimeMs: req.ThinkTimeMs,
		BeforeFEN:   req.BeforeFEN,
		From:        req.From,
		To:          req.To,
		Promotion:   req.Promotion,
	})
	if err != nil {
		if errors.Is(err, quality.ErrIllegalMove) || errors.Is(err, quality.ErrInvalidPosition) {
			writeError(w, http.StatusUnprocessableEntity, "illegal_move", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, observationResponse{
		Quality:  string(res.Quality),
		Deduped:  res.Deduped,
		AfterFEN: res.AfterFEN,
	})
}

// telemetryRequest mirrors the JSON schema for the hover and hint routes.
type telemetryRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePostHover handles POST /observations/hover requests.
func (h *ObservationHandler) HandlePostHover(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_hover"
	req, ok := decodeTelemetry(w, r, op)
	if !ok {
		return
	}
	if !h.deps.RecordHover(r.Context(), req.UserID, req.SessionID) {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandlePostHint handles POST /observations/hint requests.
func (h *ObservationHandler) HandlePostHint(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_hint"
	req, ok := decodeTelemetry(w, r, op)
	if !ok {
		return
	}
	if !h.deps.RecordHint(r.Context(), req.UserID) {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

func decodeTelemetry(w http.ResponseWriter, r *http.Request, op string) (telemetryRequest, bool) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return telemetryRequest{}, false
	}
	var req telemetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return telemetryRequest{}, false
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return telemetryRequest{}, false
	}
	return req, true
}
