package stats_test

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/stats"
)

func TestApplyMove(t *testing.T) {
	Convey("Given a fresh profile", t, func() {
		agg := stats.New()
		p := &model.Profile{UserID: "u-1"}

		Convey("When a good human move is applied", func() {
			agg.ApplyMove(p, model.Observation{ThinkTime: 3 * time.Second}, model.QualityGood)

			Convey("Then counters and mean update", func() {
				So(p.MoveCount, ShouldEqual, 1)
				So(p.BlunderCount, ShouldEqual, 0)
				So(p.AvgThinkMs, ShouldEqual, 3000)
			})
		})

		Convey("When a blunder is applied", func() {
			agg.ApplyMove(p, model.Observation{ThinkTime: time.Second}, model.QualityBlunder)

			Convey("Then the blunder counter moves with the move counter", func() {
				So(p.MoveCount, ShouldEqual, 1)
				So(p.BlunderCount, ShouldEqual, 1)
			})
		})

		Convey("When a bot move is applied", func() {
			agg.ApplyMove(p, model.Observation{Bot: true, ThinkTime: 9 * time.Second}, model.QualityNone)

			Convey("Then the profile is untouched", func() {
				So(p.MoveCount, ShouldEqual, 0)
				So(p.BlunderCount, ShouldEqual, 0)
				So(p.AvgThinkMs, ShouldEqual, 0)
			})
		})

		Convey("When hints and hovers arrive", func() {
			agg.ApplyHint(p)
			agg.ApplyHint(p)
			agg.ApplyHover(p)

			Convey("Then they count independently of moves", func() {
				So(p.HintCount, ShouldEqual, 2)
				So(p.HoverCount, ShouldEqual, 1)
				So(p.MoveCount, ShouldEqual, 0)
			})
		})
	})
}

func TestRunningMeanExactness(t *testing.T) {
	Convey("Given a long random sequence of think times", t, func() {
		agg := stats.New()
		p := &model.Profile{UserID: "u-2"}
		rng := rand.New(rand.NewSource(7))

		var sum float64
		const n = 5000
		for i := 0; i < n; i++ {
			ms := rng.Int63n(12_000)
			sum += float64(ms)
			agg.ApplyMove(p, model.Observation{ThinkTime: time.Duration(ms) * time.Millisecond}, model.QualityGood)
		}

		Convey("Then the incremental mean matches the true mean", func() {
			So(p.MoveCount, ShouldEqual, n)
			So(p.AvgThinkMs, ShouldAlmostEqual, sum/float64(n), 1e-6)
		})
	})
}

func TestCounterMonotonicity(t *testing.T) {
	Convey("Given any mix of observations", t, func() {
		agg := stats.New()
		p := &model.Profile{UserID: "u-3"}
		rng := rand.New(rand.NewSource(11))

		prevMoves, prevBlunders, prevHints := 0, 0, 0
		for i := 0; i < 1000; i++ {
			switch rng.Intn(4) {
			case 0:
				q := model.QualityGood
				if rng.Intn(3) == 0 {
					q = model.QualityBlunder
				}
				agg.ApplyMove(p, model.Observation{ThinkTime: time.Duration(rng.Intn(5000)) * time.Millisecond}, q)
			case 1:
				agg.ApplyMove(p, model.Observation{Bot: true}, model.QualityNone)
			case 2:
				agg.ApplyHint(p)
			case 3:
				agg.ApplyHover(p)
			}

			So(p.MoveCount, ShouldBeGreaterThanOrEqualTo, prevMoves)
			So(p.BlunderCount, ShouldBeGreaterThanOrEqualTo, prevBlunders)
			So(p.HintCount, ShouldBeGreaterThanOrEqualTo, prevHints)
			So(p.BlunderCount, ShouldBeLessThanOrEqualTo, p.MoveCount)

			prevMoves, prevBlunders, prevHints = p.MoveCount, p.BlunderCount, p.HintCount
		}
	})
}
