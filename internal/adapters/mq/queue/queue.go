// Package queue carries fire-and-forget telemetry (hover and hint events)
// from the ingest surface to the fold workers. The submit path must never
// block on telemetry, so enqueue is non-blocking with a backpressure result.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/metrics"
)

const defaultCapacity = 10000

// Kind discriminates telemetry payloads.
type Kind string

const (
	KindHover Kind = "hover"
	KindHint  Kind = "hint"
)

// Telemetry is one hover or hint event.
type Telemetry struct {
	Kind      Kind
	UserID    string
	SessionID string // empty for hint events, which are not session-bound
	At        time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event. Returns false when the queue is full or
	// closed; the event is dropped, which is acceptable for telemetry.
	Enqueue(ctx context.Context, e Telemetry) bool

	// Dequeue returns a channel receiving events until the queue closes.
	Dequeue(ctx context.Context) <-chan Telemetry

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close stops the queue; pending events still drain to consumers.
	Close() error
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	events   chan Telemetry
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Telemetry, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds an event, dropping it on backpressure.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Telemetry) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.observeSize()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}
}

// Dequeue returns a channel receiving events as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Telemetry {
	out := make(chan Telemetry)
	go func() {
		defer close(out)
		for e := range q.events {
			select {
			case out <- e:
				metrics.RecordQueueDequeue()
				q.observeSize()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.events)
}

// Close stops the queue. Safe to call multiple times.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) observeSize() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
