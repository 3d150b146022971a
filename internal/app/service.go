// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	telemetry "github.com/EHB-MCT/wdm-KylianAlgoet/internal/adapters/mq/queue"
	workerpool "github.com/EHB-MCT/wdm-KylianAlgoet/internal/adapters/mq/worker"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/adapters/repository"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/dedupe"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/engine"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/model"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/nudge"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/quality"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/segment"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/stats"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/domain/types"
	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/session"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/logger"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/metrics"
)

// Service implements the API dependencies for the behavior engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	tracker    dedupe.Tracker
	queue      *telemetry.InMemoryQueue
	pool       *workerpool.Pool
	oracle     *quality.Oracle
	engine     *engine.Engine
	aggregator stats.Aggregator
	scheduler  *nudge.Scheduler
	sessions   *session.Manager

	// Per-user intervention toggles, external to the profile.
	flagsMu sync.RWMutex
	flags   map[string]types.Flags

	// Live count of users per segment label, for the gauge.
	segMu     sync.Mutex
	segCounts map[string]int

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	shardCount       int
	minThinkDelay    time.Duration
	maxThinkDelay    time.Duration
	nudgeProbability float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of telemetry fold workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the telemetry queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the profile store shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithThinkDelay sets the opponent's simulated thinking delay bounds.
func WithThinkDelay(minDelay, maxDelay time.Duration) Option {
	return func(s *Service) {
		if minDelay >= 0 && maxDelay >= minDelay {
			s.minThinkDelay = minDelay
			s.maxThinkDelay = maxDelay
		}
	}
}

// WithNudgeProbability overrides the nudge fire probability.
func WithNudgeProbability(p float64) Option {
	return func(s *Service) {
		if p >= 0 && p <= 1 {
			s.nudgeProbability = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        10000,
		dedupeSize:       50000,
		shardCount:       8,
		minThinkDelay:    300 * time.Millisecond,
		maxThinkDelay:    900 * time.Millisecond,
		nudgeProbability: -1, // use the scheduler default
		flags:            make(map[string]types.Flags),
		segCounts:        make(map[string]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting behavior service...")

	s.store = repository.NewShardedStore(
		repository.WithShardCount(s.shardCount),
	)
	s.tracker = dedupe.NewInMemoryTracker(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = telemetry.NewInMemoryQueue(
		telemetry.WithCapacity(s.queueSize),
	)
	s.oracle = quality.New()
	s.engine = engine.New(
		engine.WithThinkDelay(s.minThinkDelay, s.maxThinkDelay),
	)
	s.aggregator = stats.New()

	nudgeOpts := []nudge.Option{}
	if s.nudgeProbability >= 0 {
		nudgeOpts = append(nudgeOpts, nudge.WithProbability(s.nudgeProbability))
	}
	s.scheduler = nudge.New(nudgeOpts...)

	s.sessions = session.NewManager(context.WithoutCancel(ctx))

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "behavior service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
	)

	return nil
}

// Stop gracefully shuts down the service, draining queued telemetry.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping behavior service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx) // closes the queue and drains the backlog
	}
	if s.sessions != nil {
		s.sessions.Close()
	}

	s.started = false
	s.logger.Info(ctx, "behavior service stopped")
}

// SubmitObservation labels one move and folds it into the user's profile.
// Replays of the same (gameID, ply) return the recorded verdict with
// Deduped set; bot moves pass through without touching the profile.
func (s *Service) SubmitObservation(ctx context.Context, req types.SubmitRequest) (types.SubmitResult, error) {
	key := dedupe.Key{GameID: req.GameID, Ply: req.Ply}

	prior, seen := s.tracker.Begin(ctx, key)
	if seen {
		metrics.RecordObservationDuplicate()
		s.logger.Debug(ctx, "duplicate observation",
			logger.String("gameID", req.GameID),
			logger.Int("ply", req.Ply),
		)
		return types.SubmitResult{Quality: prior, Deduped: true}, nil
	}

	if req.Bot {
		s.tracker.Complete(ctx, key, model.QualityNone)
		metrics.RecordObservationProcessed()
		return types.SubmitResult{Quality: model.QualityNone}, nil
	}

	verdict, err := s.oracle.Label(req.BeforeFEN, req.From, req.To, req.Promotion)
	if err != nil {
		// The claim must not poison the key; a corrected resubmission of
		// the same ply has to be accepted.
		s.tracker.Forget(ctx, key)
		metrics.RecordObservationRejected()
		metrics.RecordErrorByComponent("service", "rejected_move")
		return types.SubmitResult{}, fmt.Errorf("labeling move: %w", err)
	}

	q := model.QualityGood
	if verdict.Blunder {
		q = model.QualityBlunder
		metrics.RecordBlunderLabeled()
	}

	obs := model.Observation{
		UserID:    req.UserID,
		GameID:    req.GameID,
		Ply:       req.Ply,
		ThinkTime: time.Duration(req.ThinkTimeMs) * time.Millisecond,
		From:      req.From,
		To:        req.To,
		Promotion: req.Promotion,
	}

	var oldSeg, newSeg string
	_, err = s.store.Update(ctx, req.UserID, func(p *model.Profile) error {
		s.aggregator.ApplyMove(p, obs, q)
		oldSeg = p.Segment
		res := segment.Classify(segmentStats(p))
		p.Segment = string(res.Label)
		newSeg = p.Segment
		return nil
	})
	if err != nil {
		s.tracker.Forget(ctx, key)
		metrics.RecordErrorByComponent("service", "profile_update")
		return types.SubmitResult{}, fmt.Errorf("updating profile: %w", err)
	}
	s.noteSegment(oldSeg, newSeg)

	// The opponent's behavioral memory only exists while a session is live;
	// moves submitted outside one still aggregate.
	_ = s.sessions.UpdateByUser(req.UserID, func(sess *session.Session) error {
		sess.Memory.Observe(obs.ThinkTime, q)
		return nil
	})

	s.tracker.Complete(ctx, key, q)
	metrics.RecordObservationProcessed()

	return types.SubmitResult{Quality: q, AfterFEN: verdict.AfterFEN}, nil
}

// OpponentReply picks the engine's reply to the given position, with the
// mode derived from the session's behavioral memory. A session superseded
// mid-think aborts the reply.
func (s *Service) OpponentReply(ctx context.Context, sessionID, fen string) (engine.Reply, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return engine.Reply{}, session.ErrSessionNotFound
	}

	var mem engine.Memory
	if err := s.sessions.Update(sessionID, func(sess *session.Session) error {
		mem = sess.Memory
		return nil
	}); err != nil {
		return engine.Reply{}, err
	}

	replyCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sess.Context(), cancel)
	defer stop()

	start := time.Now()
	reply, err := s.engine.Reply(replyCtx, fen, mem)
	metrics.RecordOpponentThinkLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if sess.Context().Err() != nil {
			return engine.Reply{}, ErrSessionSuperseded
		}
		return reply, err
	}

	metrics.RecordOpponentMove(string(reply.Mode))
	return reply, nil
}

// RecordHover enqueues one hover event. Returns false when the queue
// refused it; hover telemetry is droppable.
func (s *Service) RecordHover(ctx context.Context, userID, sessionID string) bool {
	return s.queue.Enqueue(ctx, telemetry.Telemetry{
		Kind:      telemetry.KindHover,
		UserID:    userID,
		SessionID: sessionID,
		At:        time.Now(),
	})
}

// RecordHint enqueues one hint-usage event.
func (s *Service) RecordHint(ctx context.Context, userID string) bool {
	return s.queue.Enqueue(ctx, telemetry.Telemetry{
		Kind:   telemetry.KindHint,
		UserID: userID,
	})
}

// FoldHover applies a dequeued hover event: the profile counter and the
// session's burst window.
func (s *Service) FoldHover(ctx context.Context, userID, sessionID string, at time.Time) error {
	var oldSeg, newSeg string
	if _, err := s.store.Update(ctx, userID, func(p *model.Profile) error {
		s.aggregator.ApplyHover(p)
		oldSeg = p.Segment
		p.Segment = string(segment.Classify(segmentStats(p)).Label)
		newSeg = p.Segment
		return nil
	}); err != nil {
		return fmt.Errorf("folding hover: %w", err)
	}
	s.noteSegment(oldSeg, newSeg)
	metrics.RecordHover()

	// The session may have ended while the event sat in the queue.
	_ = s.sessions.Update(sessionID, func(sess *session.Session) error {
		s.scheduler.RecordHover(&sess.Nudge, at)
		return nil
	})
	return nil
}

// FoldHint applies a dequeued hint event to the profile. Hints feed
// interventions rather than the classifier, so the cached segment stays.
func (s *Service) FoldHint(ctx context.Context, userID string) error {
	if _, err := s.store.Update(ctx, userID, func(p *model.Profile) error {
		s.aggregator.ApplyHint(p)
		return nil
	}); err != nil {
		return fmt.Errorf("folding hint: %w", err)
	}
	metrics.RecordHint()
	return nil
}

// EvaluateNudge runs the post-move trigger chain for the user's live
// session. A nil nudge with an empty error means it was suppressed.
func (s *Service) EvaluateNudge(ctx context.Context, req types.NudgeRequest) (*nudge.Nudge, nudge.Cause, error) {
	profile, err := s.store.Get(ctx, req.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("loading profile: %w", err)
	}

	in := nudge.Input{
		MoveCount: profile.MoveCount,
		ThinkTime: time.Duration(req.ThinkTimeMs) * time.Millisecond,
		Segment:   segment.Label(profile.Segment),
		Enabled:   s.Flags(ctx, req.UserID).Nudges,
	}

	var (
		fired *nudge.Nudge
		cause nudge.Cause
	)
	err = s.sessions.UpdateByUser(req.UserID, func(sess *session.Session) error {
		now := time.Now()
		s.scheduler.Tick(&sess.Nudge, now)
		s.scheduler.NoteMove(&sess.Nudge, now)
		fired, cause = s.scheduler.Evaluate(&sess.Nudge, now, in)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	if fired != nil {
		metrics.RecordNudgeShown(string(fired.Reason))
		s.logger.Debug(ctx, "nudge fired",
			logger.String("userID", req.UserID),
			logger.String("reason", string(fired.Reason)),
		)
	} else {
		metrics.RecordNudgeSuppressed(string(cause))
	}
	return fired, cause, nil
}

// Flags returns the user's intervention toggles; nudges default to on.
func (s *Service) Flags(_ context.Context, userID string) types.Flags {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()

	f, ok := s.flags[userID]
	if !ok {
		return types.Flags{Nudges: true}
	}
	return f
}

// SetFlags replaces the user's intervention toggles.
func (s *Service) SetFlags(_ context.Context, userID string, f types.Flags) {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	s.flags[userID] = f
}

// Profile returns the user's aggregated profile in API shape. Unknown
// users read as a zeroed profile.
func (s *Service) Profile(ctx context.Context, userID string) (types.ProfileView, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return types.ProfileView{}, err
	}

	seg := p.Segment
	if seg == "" {
		seg = string(segment.Classify(segmentStats(&p)).Label)
	}

	return types.ProfileView{
		UserID:        userID,
		MoveCount:     p.MoveCount,
		BlunderCount:  p.BlunderCount,
		HintCount:     p.HintCount,
		HoverCount:    p.HoverCount,
		AvgThinkMs:    p.AvgThinkMsRounded(),
		BlunderRate:   p.BlunderRatePct(),
		HoversPerMove: p.HoversPerMove(),
		Segment:       seg,
	}, nil
}

// Segment classifies the user's current profile and returns the label
// with its rationale.
func (s *Service) Segment(ctx context.Context, userID string) (types.SegmentView, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return types.SegmentView{}, err
	}

	res := segment.Classify(segmentStats(&p))
	return types.SegmentView{
		UserID:    userID,
		Segment:   string(res.Label),
		Rationale: res.Rationale,
	}, nil
}

// BeginSession starts a game session for the user, superseding any
// previous one.
func (s *Service) BeginSession(ctx context.Context, userID, gameID string) (types.SessionView, error) {
	sess := s.sessions.Begin(userID, gameID)
	s.logger.Info(ctx, "session started",
		logger.String("sessionID", sess.ID),
		logger.String("userID", userID),
		logger.String("gameID", gameID),
	)
	return types.SessionView{
		SessionID: sess.ID,
		UserID:    userID,
		GameID:    gameID,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	st := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		st["queueLength"] = s.queue.Len(ctx)
		st["totalProfiles"] = s.store.Count(ctx)
		st["activeSessions"] = s.sessions.Count()
		st["dedupeEntries"] = s.tracker.Size()
	}

	return st
}

// noteSegment maintains the per-label user gauge across transitions.
func (s *Service) noteSegment(oldSeg, newSeg string) {
	if oldSeg == newSeg {
		return
	}

	s.segMu.Lock()
	defer s.segMu.Unlock()

	if oldSeg != "" {
		if n := s.segCounts[oldSeg] - 1; n > 0 {
			s.segCounts[oldSeg] = n
		} else {
			delete(s.segCounts, oldSeg)
		}
		metrics.UpdateSegmentUsers(oldSeg, s.segCounts[oldSeg])
	}
	s.segCounts[newSeg]++
	metrics.UpdateSegmentUsers(newSeg, s.segCounts[newSeg])

	if oldSeg != "" {
		metrics.RecordSegmentTransition()
	}
}

// segmentStats projects a profile into classifier inputs.
func segmentStats(p *model.Profile) segment.Stats {
	return segment.Stats{
		MoveCount:      p.MoveCount,
		AvgThinkSec:    p.AvgThinkSec(),
		BlunderRatePct: p.BlunderRatePct(),
		HoverCount:     p.HoverCount,
		HoversPerMove:  p.HoversPerMove(),
	}
}
