package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/adapters/mq/queue"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/adapters/mq/worker"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/logger"
)

// recordingFolder captures folded events for assertions.
type recordingFolder struct {
	mu     sync.Mutex
	hovers []string // sessionID per hover
	hints  []string // userID per hint
}

func (f *recordingFolder) FoldHover(_ context.Context, _, sessionID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hovers = append(f.hovers, sessionID)
	return nil
}

func (f *recordingFolder) FoldHint(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hints = append(f.hints, userID)
	return nil
}

func (f *recordingFolder) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hovers), len(f.hints)
}

func TestWorkerFolds(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	ctx := context.Background()

	Convey("Given a worker over a queue of telemetry", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		folder := &recordingFolder{}
		w := worker.NewWorker(q, folder, worker.WithName("test-worker"))

		So(q.Enqueue(ctx, queue.Telemetry{Kind: queue.KindHover, UserID: "u-1", SessionID: "s-1", At: time.Now()}), ShouldBeTrue)
		So(q.Enqueue(ctx, queue.Telemetry{Kind: queue.KindHint, UserID: "u-1"}), ShouldBeTrue)
		So(q.Enqueue(ctx, queue.Telemetry{Kind: queue.KindHover, UserID: "u-2", SessionID: "s-2", At: time.Now()}), ShouldBeTrue)
		So(q.Close(), ShouldBeNil)

		Convey("When the worker runs until the queue drains", func() {
			w.Run(ctx) // returns once the closed queue is empty

			Convey("Then every event was folded", func() {
				hovers, hints := folder.counts()
				So(hovers, ShouldEqual, 2)
				So(hints, ShouldEqual, 1)
			})
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	ctx := context.Background()

	Convey("Given a running worker with no events", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		w := worker.NewWorker(q, &recordingFolder{})
		go w.Run(ctx)

		Convey("Then shutdown returns promptly", func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			So(w.Shutdown(shutdownCtx), ShouldBeNil)
		})
	})
}

func TestPoolDrainsBacklog(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	ctx := context.Background()

	Convey("Given a pool over a backlog of telemetry", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		folder := &recordingFolder{}

		const total = 100
		for i := 0; i < total; i++ {
			kind := queue.KindHover
			if i%4 == 0 {
				kind = queue.KindHint
			}
			So(q.Enqueue(ctx, queue.Telemetry{Kind: kind, UserID: "u", SessionID: "s", At: time.Now()}), ShouldBeTrue)
		}

		pool := worker.NewPool(4, q, folder)
		pool.Start(ctx)

		Convey("When the pool shuts down", func() {
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then the backlog was fully folded", func() {
				hovers, hints := folder.counts()
				So(hovers+hints, ShouldEqual, total)
			})
		})
	})
}
