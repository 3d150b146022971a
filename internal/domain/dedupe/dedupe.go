// Package dedupe provides at-most-once tracking for move submissions keyed
// by (gameID, ply). A replayed key returns the previously recorded verdict
// instead of re-aggregating, which is the profile-mutation guarantee.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
)

// Key uniquely identifies one submitted move.
type Key struct {
	GameID string
	Ply    int
}

// Tracker claims move keys before aggregation and records the computed
// verdict afterwards, so a duplicate submission can answer with the original
// result.
type Tracker interface {
	// Begin atomically claims key. It returns seen=true if the key was
	// already claimed, along with whatever verdict was recorded for it
	// (QualityNone while the first submission is still in flight).
	Begin(ctx context.Context, key Key) (prior model.Quality, seen bool)

	// Complete stores the computed verdict for a claimed key.
	Complete(ctx context.Context, key Key, q model.Quality)

	// Forget releases a claim so the key can be retried. Used when a
	// submission was claimed but failed before aggregating.
	Forget(ctx context.Context, key Key)

	Size() int64
}

// entry is one claimed key in the bounded tracker's LIFO list.
type entry struct {
	key     Key
	quality model.Quality
	next    *entry
}

func (e *entry) reset() {
	*e = entry{}
}

// inMemoryTracker keeps claims in a map. In bounded mode (maxSize > 0) a
// linked list provides LIFO eviction and entries are pooled; unbounded mode
// is a plain map with no eviction.
type inMemoryTracker struct {
	mu      sync.Mutex
	seen    map[Key]*entry
	head    *entry
	maxSize int
	size    atomic.Int64
	pool    sync.Pool
}

// NewInMemoryTracker creates a tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.seen = make(map[Key]*entry)
	if t.maxSize > 0 {
		t.pool = sync.Pool{
			New: func() any { return &entry{} },
		}
	}
	return t
}

// Begin atomically claims key, evicting the oldest claim when full.
func (t *inMemoryTracker) Begin(_ context.Context, key Key) (model.Quality, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.seen[key]; ok {
		if e != nil {
			return e.quality, true
		}
		return model.QualityNone, true
	}

	if t.maxSize > 0 {
		if len(t.seen) >= t.maxSize {
			t.evictOldest()
		}
		e := t.pool.Get().(*entry)
		e.key = key
		e.next = t.head
		t.head = e
		t.seen[key] = e
	} else {
		t.seen[key] = nil
	}
	t.size.Add(1)
	return model.QualityNone, false
}

// Complete stores the verdict on an existing claim; unknown keys (already
// evicted) are ignored.
func (t *inMemoryTracker) Complete(_ context.Context, key Key, q model.Quality) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.seen[key]; ok && e != nil {
		e.quality = q
	} else if ok {
		// Unbounded mode keeps verdicts directly in pooled entries only in
		// bounded mode; materialize one here so replays still see it.
		t.seen[key] = &entry{key: key, quality: q}
	}
}

// Forget releases a claim.
func (t *inMemoryTracker) Forget(_ context.Context, key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.seen[key]
	if !ok {
		return
	}
	delete(t.seen, key)
	t.size.Add(-1)

	if t.maxSize <= 0 || e == nil {
		return
	}

	// Unlink from the LIFO list.
	if t.head == e {
		t.head = e.next
	} else {
		for cur := t.head; cur != nil; cur = cur.next {
			if cur.next == e {
				cur.next = e.next
				break
			}
		}
	}
	e.reset()
	t.pool.Put(e)
}

// evictOldest drops the least recently claimed key (list tail). Callers hold
// t.mu.
func (t *inMemoryTracker) evictOldest() {
	if t.head == nil {
		return
	}

	if t.head.next == nil {
		delete(t.seen, t.head.key)
		t.head.reset()
		t.pool.Put(t.head)
		t.head = nil
		t.size.Add(-1)
		return
	}

	prev := t.head
	for prev.next.next != nil {
		prev = prev.next
	}
	tail := prev.next
	prev.next = nil
	delete(t.seen, tail.key)
	tail.reset()
	t.pool.Put(tail)
	t.size.Add(-1)
}

// Size returns the number of tracked claims.
func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
