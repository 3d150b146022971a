// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/engine"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/session"
)

// OpponentDependencies defines the interface for opponent replies.
type OpponentDependencies interface {
	OpponentReply(ctx context.Context, sessionID, fen string) (engine.Reply, error)
}

// OpponentHandler handles opponent reply requests.
type OpponentHandler struct {
	deps OpponentDependencies
}

// NewOpponentHandler creates a new opponent handler.
func NewOpponentHandler(deps OpponentDependencies) *OpponentHandler {
	return &OpponentHandler{deps: deps}
}

// opponentRequest mirrors the JSON schema for POST /opponent/reply.
type opponentRequest struct {
	SessionID string `json:"session_id"`
	FEN       string `json:"fen"`
}

func (o opponentRequest) validate() error {
	switch {
	case strings.TrimSpace(o.SessionID) == "":
		return errors.New("missing session_id")
	case strings.TrimSpace(o.FEN) == "":
		return errors.New("missing fen")
	}
	return nil
}

type opponentResponse struct {
	Move     string `json:"move,omitempty"`
	FEN      string `json:"fen,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Check    bool   `json:"check"`
	GameOver bool   `json:"game_over"`
}

// HandlePostReply handles POST /opponent/reply requests.
func (h *OpponentHandler) HandlePostReply(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_opponent_reply"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req opponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	reply, err := h.deps.OpponentReply(r.Context(), req.SessionID, req.FEN)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrNoLegalMoves):
		// A finished game is a valid answer, not a failure.
		writeJSON(w, http.StatusOK, opponentResponse{GameOver: true})
		return
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	case errors.Is(err, engine.ErrInvalidPosition):
		writeError(w, http.StatusUnprocessableEntity, "invalid_position", err)
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, opponentResponse{
		Move:     reply.Move,
		FEN:      reply.FEN,
		Mode:     string(reply.Mode),
		Check:    reply.Check,
		GameOver: reply.GameOver,
	})
}
