package model_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
)

func TestObservationKey(t *testing.T) {
	Convey("Given observations for the same game", t, func() {
		a := model.Observation{GameID: "g-1", Ply: 4}
		b := model.Observation{GameID: "g-1", Ply: 4}
		c := model.Observation{GameID: "g-1", Ply: 5}

		Convey("Then equal (game, ply) pairs share a key", func() {
			So(a.Key(), ShouldEqual, b.Key())
		})

		Convey("And different plies do not", func() {
			So(a.Key(), ShouldNotEqual, c.Key())
		})

		Convey("And the same ply in another game does not", func() {
			other := model.Observation{GameID: "g-2", Ply: 4}
			So(a.Key(), ShouldNotEqual, other.Key())
		})
	})
}

func TestProfileDerivedStats(t *testing.T) {
	Convey("Given an empty profile", t, func() {
		p := model.Profile{UserID: "u-1"}

		Convey("Then ratios are zero, not NaN", func() {
			So(p.BlunderRatePct(), ShouldEqual, 0)
			So(p.HoversPerMove(), ShouldEqual, 0)
			So(p.AvgThinkSec(), ShouldEqual, 0)
		})
	})

	Convey("Given a populated profile", t, func() {
		p := model.Profile{
			UserID:       "u-2",
			MoveCount:    8,
			BlunderCount: 3,
			HoverCount:   20,
			AvgThinkMs:   3749.6,
		}

		Convey("Then the blunder rate is rounded to whole percent", func() {
			// 3/8 = 37.5% rounds to 38
			So(p.BlunderRatePct(), ShouldEqual, 38)
		})

		Convey("Then hovers per move stays unrounded", func() {
			So(p.HoversPerMove(), ShouldEqual, 2.5)
		})

		Convey("Then think time converts to seconds and rounds for display", func() {
			So(p.AvgThinkSec(), ShouldAlmostEqual, 3.7496, 1e-9)
			So(p.AvgThinkMsRounded(), ShouldEqual, 3750)
		})
	})
}
