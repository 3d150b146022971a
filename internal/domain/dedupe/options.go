// Package dedupe provides at-most-once tracking for move submissions.
package dedupe

// Option applies a configuration option to the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize bounds the number of tracked keys. maxSize > 0 enables LIFO
// eviction; maxSize <= 0 disables eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = maxSize
	}
}
