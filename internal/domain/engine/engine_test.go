package engine_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/engine"
)

// White to move with a free black queen on a8; capturing it is the clear
// best move, everything else leaves white down material.
const hangingQueenFEN = "q3k3/8/8/8/8/8/8/R3K3 w - - 0 1"

// Black to move with several queen checks against the cornered white king.
const checksAvailableFEN = "k7/8/8/8/8/8/q7/7K b - - 0 1"

// Black king on a8, white queen on b6: stalemate, black has no legal move.
const stalemateFEN = "k7/8/1Q6/8/8/8/8/7K b - - 0 1"

// White king and pawn only; nothing can check the distant black king.
const noChecksFEN = "k7/8/8/8/8/8/4P3/4K3 w - - 0 1"

func newTestEngine(seed int64) *engine.Engine {
	return engine.New(
		engine.WithRand(rand.New(rand.NewSource(seed))),
		engine.WithThinkDelay(0, 0),
	)
}

func TestReplyBaseline(t *testing.T) {
	Convey("Given a baseline-mode engine and a hanging queen", t, func() {
		e := newTestEngine(1)

		Convey("When sampling many replies", func() {
			counts := map[string]int{}
			for i := 0; i < 300; i++ {
				reply, err := e.Reply(context.Background(), hangingQueenFEN, engine.Memory{})
				So(err, ShouldBeNil)
				So(reply.Mode, ShouldEqual, engine.ModeBaseline)
				counts[reply.Move]++
			}

			Convey("Then only the top three moves are ever chosen", func() {
				// Best by material is the queen capture; the two runners-up
				// are the lowest-UCI moves of the tied remainder.
				for move := range counts {
					So(move, ShouldBeIn, []string{"a1a8", "a1a2", "a1a3"})
				}
			})

			Convey("And the capture is favored but not guaranteed", func() {
				So(counts["a1a8"], ShouldBeGreaterThan, counts["a1a2"])
				So(counts["a1a2"], ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestReplyBait(t *testing.T) {
	Convey("Given a bait-mode memory and a hanging queen", t, func() {
		e := newTestEngine(2)
		mem := engine.Memory{FastMoves: 2}

		Convey("When sampling many replies", func() {
			for i := 0; i < 100; i++ {
				reply, err := e.Reply(context.Background(), hangingQueenFEN, mem)
				So(err, ShouldBeNil)
				So(reply.Mode, ShouldEqual, engine.ModeBait)

				// The winning capture must never be offered, and with 15
				// legal moves the bait pool is the worst
				// max(2, floor(0.2*15)) = 3 of them.
				So(reply.Move, ShouldNotEqual, "a1a8")
				So(reply.Move, ShouldBeIn, []string{"e1e2", "e1f1", "e1f2"})
			}
		})
	})
}

func TestReplyTrap(t *testing.T) {
	Convey("Given a trap-mode memory and available checks", t, func() {
		e := newTestEngine(3)
		mem := engine.Memory{Blunders: 2}

		Convey("Then every sampled reply delivers check", func() {
			for i := 0; i < 100; i++ {
				reply, err := e.Reply(context.Background(), checksAvailableFEN, mem)
				So(err, ShouldBeNil)
				So(reply.Mode, ShouldEqual, engine.ModeTrap)
				So(reply.Check, ShouldBeTrue)
			}
		})
	})

	Convey("Given a trap-mode memory with no check available", t, func() {
		e := newTestEngine(4)
		mem := engine.Memory{Blunders: 2}

		Convey("Then the engine falls back to the single best-scoring move", func() {
			// All moves tie on material here, so the deterministic
			// tiebreak picks the lowest UCI string.
			reply, err := e.Reply(context.Background(), noChecksFEN, mem)
			So(err, ShouldBeNil)
			So(reply.Check, ShouldBeFalse)
			So(reply.Move, ShouldEqual, "e1d1")
		})
	})
}

func TestReplyTerminal(t *testing.T) {
	Convey("Given a stalemated position", t, func() {
		e := newTestEngine(5)

		Convey("Then the engine signals game over, not a failure", func() {
			reply, err := e.Reply(context.Background(), stalemateFEN, engine.Memory{})
			So(errors.Is(err, engine.ErrNoLegalMoves), ShouldBeTrue)
			So(reply.GameOver, ShouldBeTrue)
			So(reply.Move, ShouldBeEmpty)
		})
	})
}

func TestReplyOutput(t *testing.T) {
	Convey("Given any legal reply", t, func() {
		e := newTestEngine(6)
		reply, err := e.Reply(context.Background(), hangingQueenFEN, engine.Memory{})

		Convey("Then the resulting FEN reflects the move with the turn passed", func() {
			So(err, ShouldBeNil)
			So(reply.FEN, ShouldNotBeEmpty)
			So(reply.FEN, ShouldNotEqual, hangingQueenFEN)
			So(reply.FEN, ShouldContainSubstring, " b ")
		})
	})

	Convey("Given a malformed position", t, func() {
		e := newTestEngine(7)
		_, err := e.Reply(context.Background(), "garbage", engine.Memory{})

		Convey("Then the engine reports an invalid position", func() {
			So(errors.Is(err, engine.ErrInvalidPosition), ShouldBeTrue)
		})
	})
}

func TestReplyCancellation(t *testing.T) {
	Convey("Given an engine with a thinking delay", t, func() {
		e := engine.New(
			engine.WithRand(rand.New(rand.NewSource(8))),
			engine.WithThinkDelay(50*time.Millisecond, 100*time.Millisecond),
		)

		Convey("When the context is already canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Convey("Then the pending reply is abandoned", func() {
				_, err := e.Reply(ctx, hangingQueenFEN, engine.Memory{})
				So(err, ShouldNotBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
