package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/metrics"
)

const defaultShardCount = 8

// shard holds a slice of the user space behind its own lock. Aggregation is
// a read-modify-write per user, so the lock is held for the whole mutation.
type shard struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
}

// ShardedStore implements Store with hash-distributed shards, which keeps
// unrelated users from contending on a single lock.
type ShardedStore struct {
	shards []*shard
	size   atomic.Int64
}

// Option applies a configuration option to the ShardedStore.
type Option func(*ShardedStore)

// WithShardCount sets the number of shards.
func WithShardCount(count int) Option {
	return func(s *ShardedStore) {
		if count > 0 {
			s.shards = make([]*shard, count)
		}
	}
}

// NewShardedStore creates a sharded in-memory profile store.
func NewShardedStore(opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shards: make([]*shard, defaultShardCount),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.shards {
		s.shards[i] = &shard{profiles: make(map[string]*model.Profile)}
	}
	return s
}

func (s *ShardedStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Get returns a copy of the stored profile, or a zeroed one for unknown
// users. Reads do not materialize anything.
func (s *ShardedStore) Get(_ context.Context, userID string) (model.Profile, error) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if p, ok := sh.profiles[userID]; ok {
		return *p, nil
	}
	return model.Profile{UserID: userID}, nil
}

// Update mutates the user's profile under the shard lock and returns a copy
// of the result. Unknown users are materialized zeroed first.
func (s *ShardedStore) Update(_ context.Context, userID string, mutate func(*model.Profile) error) (model.Profile, error) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	p, ok := sh.profiles[userID]
	if !ok {
		p = &model.Profile{UserID: userID}
		sh.profiles[userID] = p
		metrics.UpdateProfilesTracked(int(s.size.Add(1)))
	}

	if err := mutate(p); err != nil {
		return model.Profile{}, fmt.Errorf("profile update for %s: %w", userID, err)
	}
	return *p, nil
}

// Count returns the number of materialized profiles.
func (s *ShardedStore) Count(_ context.Context) int {
	return int(s.size.Load())
}
