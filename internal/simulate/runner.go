package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"

	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/logger"
)

// Runner plays synthetic sessions against a live instance.
type Runner struct {
	client   *Client
	rng      *rand.Rand
	sessions int
	moves    int
	logger   logger.Logger
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithSessions sets how many sessions to play.
func WithSessions(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.sessions = n
		}
	}
}

// WithMovesPerSession sets how many human moves each session plays.
func WithMovesPerSession(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.moves = n
		}
	}
}

// WithSeed seeds the random source for reproducible runs.
func WithSeed(seed int64) Option {
	return func(r *Runner) {
		r.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not security
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner with configuration options.
func NewRunner(client *Client, opts ...Option) *Runner {
	r := &Runner{
		client:   client,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulation, not security
		sessions: 10,
		moves:    12,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("simulate")
	}
	return r
}

// Summary aggregates what a run produced.
type Summary struct {
	Sessions    int
	Moves       int
	Blunders    int
	NudgesFired int
	Segments    map[string]int
}

// Run plays the configured number of sessions, cycling through the persona
// roster, and reports the resulting segment distribution.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	personas := Personas()
	summary := Summary{Segments: make(map[string]int)}

	for i := 0; i < r.sessions; i++ {
		persona := personas[i%len(personas)]
		moves, blunders, nudges, seg, err := r.playSession(ctx, persona)
		if err != nil {
			return summary, fmt.Errorf("session %d (%s): %w", i+1, persona.Name, err)
		}
		summary.Sessions++
		summary.Moves += moves
		summary.Blunders += blunders
		summary.NudgesFired += nudges
		summary.Segments[seg]++
	}
	return summary, nil
}

// playSession plays one full game loop for a persona and returns its move,
// blunder and nudge counts plus the final segment label.
func (r *Runner) playSession(ctx context.Context, persona Persona) (moves, blunders, nudges int, seg string, err error) {
	userID := persona.Name + "-" + uuid.NewString()[:8]
	gameID := "game-" + uuid.NewString()[:8]

	sess, err := r.client.BeginSession(ctx, userID, gameID)
	if err != nil {
		return 0, 0, 0, "", err
	}
	r.logger.Debug(ctx, "session started",
		logger.String("persona", persona.Name),
		logger.String("sessionID", sess.SessionID),
	)

	game := chess.NewGame()
	notation := chess.UCINotation{}
	ply := 0

	for m := 1; m <= r.moves; m++ {
		for h := 0; h < persona.hovers(m); h++ {
			if err := r.client.Hover(ctx, userID, sess.SessionID); err != nil {
				return moves, blunders, nudges, "", err
			}
		}
		if r.rng.Float64() < persona.HintRate {
			if err := r.client.Hint(ctx, userID); err != nil {
				return moves, blunders, nudges, "", err
			}
		}

		legal := game.Position().ValidMoves()
		if len(legal) == 0 {
			break
		}
		mv := legal[r.rng.Intn(len(legal))]
		uci := notation.Encode(game.Position(), mv)
		from, to, promotion := uci[:2], uci[2:4], uci[4:]

		think := persona.think(r.rng)
		ply++
		reply, err := r.client.SubmitMove(ctx, userID, gameID, ply, false,
			think.Milliseconds(), game.Position().String(), from, to, promotion)
		if err != nil {
			return moves, blunders, nudges, "", err
		}
		moves++
		if reply.Quality == "blunder" {
			blunders++
		}
		if err := game.Move(mv); err != nil {
			return moves, blunders, nudges, "", fmt.Errorf("applying own move %s: %w", uci, err)
		}

		verdict, err := r.client.EvaluateNudge(ctx, userID, think.Milliseconds())
		if err != nil {
			return moves, blunders, nudges, "", err
		}
		if verdict.Fired {
			nudges++
		}

		opp, err := r.client.Opponent(ctx, sess.SessionID, game.Position().String())
		if err != nil {
			return moves, blunders, nudges, "", err
		}
		if opp.GameOver {
			break
		}

		oppMove, err := notation.Decode(game.Position(), opp.Move)
		if err != nil {
			return moves, blunders, nudges, "", fmt.Errorf("decoding opponent move %s: %w", opp.Move, err)
		}
		ply++
		if _, err := r.client.SubmitMove(ctx, userID, gameID, ply, true, 0, "", "", "", ""); err != nil {
			return moves, blunders, nudges, "", err
		}
		if err := game.Move(oppMove); err != nil {
			return moves, blunders, nudges, "", fmt.Errorf("applying opponent move %s: %w", opp.Move, err)
		}
	}

	profile, err := r.client.Profile(ctx, userID)
	if err != nil {
		return moves, blunders, nudges, "", err
	}
	return moves, blunders, nudges, profile.Segment, nil
}
