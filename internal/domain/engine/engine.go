// Package engine selects the adaptive opponent's reply. The opponent is
// intentionally sub-optimal and steerable: its mode is derived from the
// short-term behavior memory and its move selection is weighted-random.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/notnil/chess"
)

// Default simulated thinking delay bounds.
const (
	defaultMinThinkDelay = 300 * time.Millisecond
	defaultMaxThinkDelay = 900 * time.Millisecond
)

// baitWorstShare is the fraction of the legal move list the bait pool draws
// from, with a floor of two moves.
const baitWorstShare = 0.2

// Piece values for the material evaluation, side-to-move-favorable sign.
var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

// Reply is one chosen opponent move.
type Reply struct {
	Move     string // UCI encoding of the selected move
	FEN      string // position after the move
	Mode     Mode
	Check    bool
	GameOver bool // no legal move existed; Move and FEN are empty
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRand sets the random source, used by tests for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithThinkDelay sets the simulated thinking delay bounds. A zero max
// disables the delay entirely.
func WithThinkDelay(minDelay, maxDelay time.Duration) Option {
	return func(e *Engine) {
		if minDelay >= 0 && maxDelay >= minDelay {
			e.minThinkDelay = minDelay
			e.maxThinkDelay = maxDelay
		}
	}
}

// Engine picks opponent replies. Safe for concurrent use; the random source
// is guarded by a mutex.
type Engine struct {
	mu            sync.Mutex
	rng           *rand.Rand
	minThinkDelay time.Duration
	maxThinkDelay time.Duration
}

// New creates an engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // variance, not security
		minThinkDelay: defaultMinThinkDelay,
		maxThinkDelay: defaultMaxThinkDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// scoredMove pairs a legal move with the material balance it leaves from the
// engine's perspective.
type scoredMove struct {
	move  *chess.Move
	uci   string
	score int
}

// Reply selects the opponent's move for the position in fen, where it is the
// engine's turn. A terminal position returns a GameOver reply wrapped in
// ErrNoLegalMoves; that is the normal end-of-game signal, not a failure.
func (e *Engine) Reply(ctx context.Context, fen string, mem Memory) (Reply, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	pos := chess.NewGame(opt).Position()

	mode := ModeFor(mem)
	legal := pos.ValidMoves()
	if len(legal) == 0 {
		return Reply{Mode: mode, GameOver: true}, ErrNoLegalMoves
	}

	if err := e.think(ctx); err != nil {
		return Reply{}, err
	}

	scored := e.scoreMoves(pos, legal)

	var pick scoredMove
	switch mode {
	case ModeTrap:
		pick = e.pickTrap(scored)
	case ModeBait:
		pick = e.pickBait(scored)
	default:
		pick = e.pickBaseline(scored)
	}

	after := pos.Update(pick.move)
	return Reply{
		Move:  pick.uci,
		FEN:   after.String(),
		Mode:  mode,
		Check: pick.move.HasTag(chess.Check),
	}, nil
}

// think simulates deliberation, honoring context cancellation so a superseded
// game never waits out a stale reply.
func (e *Engine) think(ctx context.Context) error {
	if e.maxThinkDelay <= 0 {
		return nil
	}
	delay := e.minThinkDelay
	if span := e.maxThinkDelay - e.minThinkDelay; span > 0 {
		e.mu.Lock()
		delay += time.Duration(e.rng.Int63n(int64(span)))
		e.mu.Unlock()
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("opponent reply canceled: %w", ctx.Err())
	case <-time.After(delay):
		return nil
	}
}

// scoreMoves evaluates every legal move by the material balance it leaves
// from the side-to-move's perspective, sorted best first. Ties break on the
// UCI string so the ordering is deterministic.
func (e *Engine) scoreMoves(pos *chess.Position, legal []*chess.Move) []scoredMove {
	side := pos.Turn()
	scored := make([]scoredMove, len(legal))
	for i, m := range legal {
		after := pos.Update(m)
		scored[i] = scoredMove{
			move:  m,
			uci:   chess.UCINotation{}.Encode(pos, m),
			score: materialEval(after, side),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].uci < scored[j].uci
	})
	return scored
}

// materialEval sums piece values on the board, positive for side.
func materialEval(pos *chess.Position, side chess.Color) int {
	total := 0
	for _, piece := range pos.Board().SquareMap() {
		value := pieceValues[piece.Type()]
		if piece.Color() == side {
			total += value
		} else {
			total -= value
		}
	}
	return total
}

// pickBaseline samples one of the top three moves with weights 3:2:1, best
// first. Favoring without guaranteeing the best move keeps the opponent
// believable.
func (e *Engine) pickBaseline(scored []scoredMove) scoredMove {
	top := scored
	if len(top) > 3 {
		top = top[:3]
	}
	weights := []int{3, 2, 1}[:len(top)]

	total := 0
	for _, w := range weights {
		total += w
	}
	e.mu.Lock()
	roll := e.rng.Intn(total)
	e.mu.Unlock()
	for i, w := range weights {
		if roll < w {
			return top[i]
		}
		roll -= w
	}
	return top[len(top)-1]
}

// pickBait samples uniformly among the worst max(2, 20%) of moves, creating
// a learnable capture opportunity for a player who has been rushing.
func (e *Engine) pickBait(scored []scoredMove) scoredMove {
	k := int(baitWorstShare * float64(len(scored)))
	if k < 2 {
		k = 2
	}
	if k > len(scored) {
		k = len(scored)
	}
	worst := scored[len(scored)-k:]
	e.mu.Lock()
	pick := worst[e.rng.Intn(len(worst))]
	e.mu.Unlock()
	return pick
}

// pickTrap prefers any checking move, sampled uniformly; with none available
// it falls back to the single best-scoring move.
func (e *Engine) pickTrap(scored []scoredMove) scoredMove {
	var checking []scoredMove
	for _, sm := range scored {
		if sm.move.HasTag(chess.Check) {
			checking = append(checking, sm)
		}
	}
	if len(checking) == 0 {
		return scored[0]
	}
	e.mu.Lock()
	pick := checking[e.rng.Intn(len(checking))]
	e.mu.Unlock()
	return pick
}
