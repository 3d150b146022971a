package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/metrics"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithRegistry(registry),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("behavior"),
			metrics.WithHistogramBuckets([]float64{1, 10, 100}),
		)

		Convey("Then construction registers without panicking", func() {
			So(m, ShouldNotBeNil)
		})

		Convey("Then the registry can gather the registered families", func() {
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			// Counters without observations gather lazily; just assert no error
			// and that gathering is repeatable.
			_, err = registry.Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			So(func() {
				metrics.RecordObservationProcessed()
				metrics.RecordObservationDuplicate()
				metrics.RecordObservationRejected()
				metrics.RecordBlunderLabeled()
				metrics.RecordHint()
				metrics.RecordHover()
			}, ShouldNotPanic)
		})

		Convey("When recording labeled metrics", func() {
			So(func() {
				metrics.UpdateSegmentUsers("Balanced", 3)
				metrics.RecordSegmentTransition()
				metrics.RecordOpponentMove("baseline")
				metrics.RecordOpponentThinkLatency(42)
				metrics.RecordNudgeShown("tooFast")
				metrics.RecordNudgeSuppressed("cooldown")
				metrics.RecordHTTPRequest("observations", "POST", "202")
				metrics.RecordHTTPRequestDuration("observations", "POST", "202", 1.5)
				metrics.RecordErrorByComponent("queue", "capacity_exceeded")
			}, ShouldNotPanic)
		})

		Convey("When updating gauges", func() {
			So(func() {
				metrics.UpdateQueueSize(1)
				metrics.UpdateQueueCapacity(10)
				metrics.UpdateQueueUtilization(0.1)
				metrics.UpdateActiveSessions(2)
				metrics.UpdateProfilesTracked(5)
				metrics.UpdateSystemMemoryBytes(1 << 20)
				metrics.UpdateSystemGoroutines(8)
			}, ShouldNotPanic)
		})

		Convey("Then GetRegistry exposes the custom registry", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
