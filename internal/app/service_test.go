package service_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/EHB-MCT/wdm-KylianAlgoet/internal/app"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/nudge"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/quality"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/types"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/session"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/logger"
)

const (
	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	// White queen on an open file facing a rook: Qd4 hangs, Qb1 is safe.
	openFileFEN = "3r3k/8/8/8/8/8/8/3Q3K w - - 0 1"
)

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	opts = append([]service.Option{
		service.WithThinkDelay(0, 0),
		service.WithWorkerCount(2),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("service start: %v", err)
	}
	return svc
}

func TestSubmitObservation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		Reset(svc.Stop)

		Convey("When a safe human move is submitted", func() {
			res, err := svc.SubmitObservation(ctx, types.SubmitRequest{
				UserID: "u-1", GameID: "g-1", Ply: 1,
				ThinkTimeMs: 1200, BeforeFEN: startFEN, From: "e2", To: "e4",
			})

			Convey("Then it is labeled good and aggregated", func() {
				So(err, ShouldBeNil)
				So(res.Quality, ShouldEqual, model.QualityGood)
				So(res.Deduped, ShouldBeFalse)
				So(res.AfterFEN, ShouldNotBeEmpty)

				p, err := svc.Profile(ctx, "u-1")
				So(err, ShouldBeNil)
				So(p.MoveCount, ShouldEqual, 1)
				So(p.AvgThinkMs, ShouldEqual, 1200)
			})
		})

		Convey("When a hanging move is submitted", func() {
			res, err := svc.SubmitObservation(ctx, types.SubmitRequest{
				UserID: "u-1", GameID: "g-1", Ply: 1,
				ThinkTimeMs: 800, BeforeFEN: openFileFEN, From: "d1", To: "d4",
			})

			Convey("Then it is labeled a blunder", func() {
				So(err, ShouldBeNil)
				So(res.Quality, ShouldEqual, model.QualityBlunder)

				p, err := svc.Profile(ctx, "u-1")
				So(err, ShouldBeNil)
				So(p.BlunderCount, ShouldEqual, 1)
			})
		})

		Convey("When the same ply is submitted twice", func() {
			first, err := svc.SubmitObservation(ctx, types.SubmitRequest{
				UserID: "u-1", GameID: "g-1", Ply: 1,
				ThinkTimeMs: 1200, BeforeFEN: startFEN, From: "e2", To: "e4",
			})
			So(err, ShouldBeNil)

			replay, err := svc.SubmitObservation(ctx, types.SubmitRequest{
				UserID: "u-1", GameID: "g-1", Ply: 1,
				ThinkTimeMs: 1200, BeforeFEN: startFEN, From: "e2", To: "e4",
			})

			Convey("Then the replay returns the recorded verdict without re-aggregating", func() {
				So(err, ShouldBeNil)
				So(replay.Deduped, ShouldBeTrue)
				So(replay.Quality, ShouldEqual, first.Quality)

				p, err := svc.Profile(ctx, "u-1")
				So(err, ShouldBeNil)
				So(p.MoveCount, ShouldEqual, 1)
			})
		})

		Convey("When a bot move is submitted", func() {
			res, err := svc.SubmitObservation(ctx, types.SubmitRequest{
				UserID: "u-1", GameID: "g-1", Ply: 2, Bot: true,
			})

			Convey("Then it passes through unlabeled and leaves the profile alone", func() {
				So(err, ShouldBeNil)
				So(res.Quality, ShouldEqual, model.QualityNone)

				p, err := svc.Profile(ctx, "u-1")
				So(err, ShouldBeNil)
				So(p.MoveCount, ShouldEqual, 0)
			})
		})

		Convey("When an illegal move is submitted", func() {
			_, err := svc.SubmitObservation(ctx, types.SubmitRequest{
				UserID: "u-1", GameID: "g-1", Ply: 1,
				ThinkTimeMs: 500, BeforeFEN: startFEN, From: "e2", To: "e5",
			})

			Convey("Then it is rejected without consuming the ply", func() {
				So(errors.Is(err, quality.ErrIllegalMove), ShouldBeTrue)

				res, err := svc.SubmitObservation(ctx, types.SubmitRequest{
					UserID: "u-1", GameID: "g-1", Ply: 1,
					ThinkTimeMs: 500, BeforeFEN: startFEN, From: "e2", To: "e4",
				})
				So(err, ShouldBeNil)
				So(res.Deduped, ShouldBeFalse)
				So(res.Quality, ShouldEqual, model.QualityGood)
			})
		})
	})
}

func TestTelemetryFolding(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with queued telemetry", t, func() {
		svc := newStartedService(t)

		So(svc.RecordHint(ctx, "u-1"), ShouldBeTrue)
		So(svc.RecordHover(ctx, "u-1", "no-such-session"), ShouldBeTrue)
		So(svc.RecordHover(ctx, "u-1", "no-such-session"), ShouldBeTrue)

		Convey("When the service stops and drains the queue", func() {
			svc.Stop()

			Convey("Then the events were folded into the profile", func() {
				p, err := svc.Profile(ctx, "u-1")
				So(err, ShouldBeNil)
				So(p.HintCount, ShouldEqual, 1)
				So(p.HoverCount, ShouldEqual, 2)
			})
		})
	})
}

func TestSessionsAndOpponent(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with a session", t, func() {
		svc := newStartedService(t)
		Reset(svc.Stop)

		view, err := svc.BeginSession(ctx, "u-1", "g-1")
		So(err, ShouldBeNil)
		So(view.SessionID, ShouldNotBeEmpty)

		Convey("When the opponent is asked to reply", func() {
			reply, err := svc.OpponentReply(ctx, view.SessionID, startFEN)

			Convey("Then it plays a baseline move", func() {
				So(err, ShouldBeNil)
				So(reply.GameOver, ShouldBeFalse)
				So(reply.Move, ShouldNotBeEmpty)
				So(reply.FEN, ShouldNotBeEmpty)
			})
		})

		Convey("When the user begins a new session", func() {
			_, err := svc.BeginSession(ctx, "u-1", "g-2")
			So(err, ShouldBeNil)

			Convey("Then the old session no longer answers", func() {
				_, err := svc.OpponentReply(ctx, view.SessionID, startFEN)
				So(errors.Is(err, session.ErrSessionNotFound), ShouldBeTrue)
			})
		})

		Convey("When no session exists for an id", func() {
			_, err := svc.OpponentReply(ctx, "nope", startFEN)

			Convey("Then it reports not found", func() {
				So(errors.Is(err, session.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestEvaluateNudge(t *testing.T) {
	ctx := context.Background()

	// Warm the profile past the nudge warm-up with safe opening moves.
	warm := func(svc *service.Service, userID string, moves int) {
		for i := 1; i <= moves; i++ {
			_, err := svc.SubmitObservation(ctx, types.SubmitRequest{
				UserID: userID, GameID: "warm-" + userID, Ply: i,
				ThinkTimeMs: 2000, BeforeFEN: startFEN, From: "e2", To: "e4",
			})
			So(err, ShouldBeNil)
		}
	}

	Convey("Given a service that always fires eligible nudges", t, func() {
		svc := newStartedService(t, service.WithNudgeProbability(1))
		Reset(svc.Stop)

		_, err := svc.BeginSession(ctx, "u-1", "g-1")
		So(err, ShouldBeNil)

		Convey("When a slow move follows the warm-up", func() {
			warm(svc, "u-1", 6)
			fired, cause, err := svc.EvaluateNudge(ctx, types.NudgeRequest{
				UserID: "u-1", ThinkTimeMs: 6000,
			})

			Convey("Then a tooSlow nudge fires", func() {
				So(err, ShouldBeNil)
				So(cause, ShouldBeEmpty)
				So(fired, ShouldNotBeNil)
				So(fired.Reason, ShouldEqual, nudge.ReasonTooSlow)
				So(fired.Message, ShouldNotBeEmpty)
			})
		})

		Convey("When nudges are disabled for the user", func() {
			warm(svc, "u-1", 6)
			svc.SetFlags(ctx, "u-1", types.Flags{Nudges: false})

			fired, cause, err := svc.EvaluateNudge(ctx, types.NudgeRequest{
				UserID: "u-1", ThinkTimeMs: 6000,
			})

			Convey("Then evaluation is suppressed", func() {
				So(err, ShouldBeNil)
				So(fired, ShouldBeNil)
				So(cause, ShouldEqual, nudge.CauseDisabled)
			})
		})

		Convey("When the profile is still warming up", func() {
			warm(svc, "u-1", 2)
			fired, cause, err := svc.EvaluateNudge(ctx, types.NudgeRequest{
				UserID: "u-1", ThinkTimeMs: 6000,
			})

			Convey("Then evaluation is suppressed", func() {
				So(err, ShouldBeNil)
				So(fired, ShouldBeNil)
				So(cause, ShouldEqual, nudge.CauseWarmingUp)
			})
		})

		Convey("When the user has no live session", func() {
			_, _, err := svc.EvaluateNudge(ctx, types.NudgeRequest{
				UserID: "u-2", ThinkTimeMs: 6000,
			})

			Convey("Then it reports not found", func() {
				So(errors.Is(err, session.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestFlagsAndStats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		Reset(svc.Stop)

		Convey("Then flags default to nudges enabled", func() {
			f := svc.Flags(ctx, "u-1")
			So(f.Nudges, ShouldBeTrue)
			So(f.ConfirmMoves, ShouldBeFalse)
		})

		Convey("When flags are set they round-trip", func() {
			svc.SetFlags(ctx, "u-1", types.Flags{ConfirmMoves: true, Nudges: false})
			f := svc.Flags(ctx, "u-1")
			So(f.ConfirmMoves, ShouldBeTrue)
			So(f.Nudges, ShouldBeFalse)
		})

		Convey("When stats are read after activity", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.BeginSession(ctx, "u-"+strconv.Itoa(i), "g")
				So(err, ShouldBeNil)
			}

			st := svc.GetStats()
			So(st["started"], ShouldBeTrue)
			So(st["activeSessions"], ShouldEqual, 3)
		})
	})
}
