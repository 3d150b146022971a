package simulate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/adapters/http/api"
	app "github.com/EHB-MCT/wdm-KylianAlgoet/internal/app"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/simulate"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/logger"
)

func TestRunnerAgainstLiveService(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	ctx := context.Background()

	Convey("Given a live service behind an HTTP server", t, func() {
		svc := app.New(
			app.WithThinkDelay(0, 0),
			app.WithWorkerCount(2),
			app.WithNudgeProbability(0), // keep runs deterministic
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		Convey("When a seeded run plays a few short sessions", func() {
			runner := simulate.NewRunner(simulate.NewClient(srv.URL),
				simulate.WithSessions(5),
				simulate.WithMovesPerSession(8),
				simulate.WithSeed(42),
			)
			summary, err := runner.Run(ctx)

			Convey("Then every session completes and classifies", func() {
				So(err, ShouldBeNil)
				So(summary.Sessions, ShouldEqual, 5)
				So(summary.Moves, ShouldBeGreaterThan, 0)

				total := 0
				for _, n := range summary.Segments {
					total += n
				}
				So(total, ShouldEqual, 5)
			})
		})
	})
}
