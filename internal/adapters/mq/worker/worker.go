// Package worker folds queued telemetry into profiles and sessions.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/adapters/mq/queue"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/logger"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/metrics"
)

// Shutdown timing constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Folder applies one telemetry event to the behavioral state. Implemented
// by the app service.
type Folder interface {
	FoldHover(ctx context.Context, userID, sessionID string, at time.Time) error
	FoldHint(ctx context.Context, userID string) error
}

// Queue defines how workers receive telemetry.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Telemetry
}

// Worker consumes telemetry until stopped.
type Worker struct {
	queue  Queue
	folder Folder
	name   string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, folder Folder, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		folder:   folder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run consumes events until the context is canceled, the worker is shut
// down, or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.fold(ctx, e); err != nil {
				metrics.RecordWorkerError()
				metrics.RecordErrorByComponent("worker", "fold_error")
				w.logger.Error(ctx, "telemetry fold failed",
					logger.String("kind", string(e.Kind)),
					logger.String("userID", e.UserID),
					logger.Error(err),
				)
			}
		}
	}
}

// signalStop asks the worker to exit; safe to call more than once.
func (w *Worker) signalStop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Shutdown stops the worker, waiting for the in-flight event.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.signalStop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// fold dispatches one event to the folder.
func (w *Worker) fold(ctx context.Context, e queue.Telemetry) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	switch e.Kind {
	case queue.KindHover:
		return w.folder.FoldHover(ctx, e.UserID, e.SessionID, e.At)
	case queue.KindHint:
		return w.folder.FoldHint(ctx, e.UserID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind)
	}
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers; a non-positive count
// defaults to twice the CPU count.
func NewPool(workerCount int, q Queue, folder Folder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * 2
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, folder, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers without draining and waits briefly for each.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.signalStop()
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue so workers drain the backlog, then waits for
// them within the pool timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
