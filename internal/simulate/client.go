package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

// Client is a thin JSON client for the behavior API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client against the given base URL, e.g.
// "http://localhost:9080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// SessionReply mirrors the POST /sessions response.
type SessionReply struct {
	SessionID string `json:"session_id"`
}

// MoveReply mirrors the POST /observations response.
type MoveReply struct {
	Quality  string `json:"quality"`
	Deduped  bool   `json:"deduped"`
	AfterFEN string `json:"after_fen"`
}

// OpponentReply mirrors the POST /opponent/reply response.
type OpponentReply struct {
	Move     string `json:"move"`
	FEN      string `json:"fen"`
	Mode     string `json:"mode"`
	GameOver bool   `json:"game_over"`
}

// NudgeReply mirrors the POST /nudges/evaluate response.
type NudgeReply struct {
	Fired bool   `json:"fired"`
	Cause string `json:"cause"`
}

// ProfileReply mirrors the GET /profiles/{user_id} response.
type ProfileReply struct {
	MoveCount    int    `json:"move_count"`
	BlunderCount int    `json:"blunder_count"`
	Segment      string `json:"segment"`
}

// BeginSession starts a session and returns its id.
func (c *Client) BeginSession(ctx context.Context, userID, gameID string) (SessionReply, error) {
	var out SessionReply
	err := c.post(ctx, "/sessions", map[string]any{
		"user_id": userID,
		"game_id": gameID,
	}, &out)
	return out, err
}

// SubmitMove posts one move observation.
func (c *Client) SubmitMove(ctx context.Context, userID, gameID string, ply int, bot bool, thinkMs int64, beforeFEN, from, to, promotion string) (MoveReply, error) {
	var out MoveReply
	err := c.post(ctx, "/observations", map[string]any{
		"user_id":       userID,
		"game_id":       gameID,
		"ply":           ply,
		"bot":           bot,
		"think_time_ms": thinkMs,
		"before_fen":    beforeFEN,
		"from":          from,
		"to":            to,
		"promotion":     promotion,
	}, &out)
	return out, err
}

// Hover posts one hover telemetry event.
func (c *Client) Hover(ctx context.Context, userID, sessionID string) error {
	return c.post(ctx, "/observations/hover", map[string]any{
		"user_id":    userID,
		"session_id": sessionID,
	}, nil)
}

// Hint posts one hint telemetry event.
func (c *Client) Hint(ctx context.Context, userID string) error {
	return c.post(ctx, "/observations/hint", map[string]any{
		"user_id": userID,
	}, nil)
}

// Opponent asks for the engine's reply to the given position.
func (c *Client) Opponent(ctx context.Context, sessionID, fen string) (OpponentReply, error) {
	var out OpponentReply
	err := c.post(ctx, "/opponent/reply", map[string]any{
		"session_id": sessionID,
		"fen":        fen,
	}, &out)
	return out, err
}

// EvaluateNudge runs the post-move nudge evaluation.
func (c *Client) EvaluateNudge(ctx context.Context, userID string, thinkMs int64) (NudgeReply, error) {
	var out NudgeReply
	err := c.post(ctx, "/nudges/evaluate", map[string]any{
		"user_id":       userID,
		"think_time_ms": thinkMs,
	}, &out)
	return out, err
}

// Profile fetches the aggregated profile for a user.
func (c *Client) Profile(ctx context.Context, userID string) (ProfileReply, error) {
	var out ProfileReply

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/profiles/"+userID, nil)
	if err != nil {
		return out, fmt.Errorf("building profile request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("fetching profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("fetching profile: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decoding profile: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("posting %s: status %d: %s", path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
