package quality_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/quality"
)

// Open d-file between the white queen on d1 and the black rook on d8.
const openFileFEN = "3r3k/8/8/8/8/8/8/3Q3K w - - 0 1"

func TestLabel(t *testing.T) {
	Convey("Given a position with an open file", t, func() {
		oracle := quality.New()

		Convey("When the queen moves into the rook's file", func() {
			verdict, err := oracle.Label(openFileFEN, "d1", "d4", "")

			Convey("Then the hanging queen is labeled a blunder", func() {
				So(err, ShouldBeNil)
				So(verdict.Blunder, ShouldBeTrue)
			})
		})

		Convey("When the queen steps aside instead", func() {
			verdict, err := oracle.Label(openFileFEN, "d1", "b1", "")

			Convey("Then the move is labeled good", func() {
				So(err, ShouldBeNil)
				So(verdict.Blunder, ShouldBeFalse)
				So(verdict.AfterFEN, ShouldNotBeEmpty)
			})
		})

		Convey("When the king tries to jump two squares", func() {
			_, err := oracle.Label(openFileFEN, "h1", "h3", "")

			Convey("Then the move is rejected as illegal", func() {
				So(errors.Is(err, quality.ErrIllegalMove), ShouldBeTrue)
			})
		})

		Convey("When the queen captures the rook", func() {
			verdict, err := oracle.Label(openFileFEN, "d1", "d8", "")

			Convey("Then the capture gives check", func() {
				So(err, ShouldBeNil)
				So(verdict.Check, ShouldBeTrue)
				So(verdict.Blunder, ShouldBeFalse)
			})
		})
	})

	Convey("Given the starting position", t, func() {
		oracle := quality.New()
		const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

		Convey("Then a normal opening move is good", func() {
			verdict, err := oracle.Label(startFEN, "e2", "e4", "")
			So(err, ShouldBeNil)
			So(verdict.Blunder, ShouldBeFalse)
		})

		Convey("Then a pawn cannot jump three ranks", func() {
			_, err := oracle.Label(startFEN, "e2", "e5", "")
			So(errors.Is(err, quality.ErrIllegalMove), ShouldBeTrue)
		})

		Convey("Then black's pieces cannot move on white's turn", func() {
			_, err := oracle.Label(startFEN, "e7", "e5", "")
			So(errors.Is(err, quality.ErrIllegalMove), ShouldBeTrue)
		})
	})

	Convey("Given a pawn one step from promotion", t, func() {
		oracle := quality.New()
		const promoFEN = "7k/P7/8/8/8/8/8/7K w - - 0 1"

		Convey("When no promotion piece is supplied", func() {
			verdict, err := oracle.Label(promoFEN, "a7", "a8", "")

			Convey("Then the move promotes to a queen and gives check", func() {
				So(err, ShouldBeNil)
				So(verdict.Check, ShouldBeTrue)
				So(verdict.Blunder, ShouldBeFalse)
			})
		})
	})

	Convey("Given a malformed FEN", t, func() {
		oracle := quality.New()
		_, err := oracle.Label("not a position", "e2", "e4", "")

		Convey("Then the oracle reports an invalid position", func() {
			So(errors.Is(err, quality.ErrInvalidPosition), ShouldBeTrue)
		})
	})
}
