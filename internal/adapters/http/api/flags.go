// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// FlagDependencies defines the interface for intervention flag access.
type FlagDependencies interface {
	Flags(ctx context.Context, userID string) Flags
	SetFlags(ctx context.Context, userID string, f Flags)
}

// FlagHandler handles per-user intervention flag reads and writes.
type FlagHandler struct {
	deps FlagDependencies
}

// NewFlagHandler creates a new flag handler.
func NewFlagHandler(deps FlagDependencies) *FlagHandler {
	return &FlagHandler{deps: deps}
}

// HandleFlags handles GET and PUT /flags/{user_id} requests.
func (h *FlagHandler) HandleFlags(w http.ResponseWriter, r *http.Request) {
	const op = "api.flags"

	userID := strings.TrimPrefix(r.URL.Path, "/flags/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Flags(r.Context(), userID))
	case http.MethodPut:
		var f Flags
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		h.deps.SetFlags(r.Context(), userID, f)
		writeJSON(w, http.StatusOK, f)
	default:
		http.NotFound(w, r)
	}
}
