package learning

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/srs"
	"github.com/phrazzld/vocabflow/internal/domain/streak"
	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
	"github.com/phrazzld/vocabflow/internal/store"
	"golang.org/x/sync/errgroup"
)

// Service runs the learner-facing operations. It is safe for concurrent use.
type Service struct {
	words     store.WordStore
	stats     store.StatsStore
	stories   store.StoryStore
	emitter   events.EventEmitter
	srs       srs.Service
	generator generation.Generator
	validate  *validator.Validate
	logger    *slog.Logger

	location *time.Location
	clock    func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand

	sessions  *sessionRegistry
	overrides *settingsOverrides
	pending   *pendingWords
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator sets the model used by the AI-backed imports. Without it
// those imports fail with generation.ErrUnavailable.
func WithGenerator(g generation.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithLocation sets the timezone in which a learner's day starts.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithRand sets the random source used to pick practice words.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		if r != nil {
			s.rand = r
		}
	}
}

// NewService creates a learning Service.
func NewService(
	words store.WordStore,
	stats store.StatsStore,
	stories store.StoryStore,
	emitter events.EventEmitter,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if words == nil {
		panic("words store cannot be nil") // ALLOW-PANIC
	}
	if stats == nil {
		panic("stats store cannot be nil") // ALLOW-PANIC
	}
	if stories == nil {
		panic("stories store cannot be nil") // ALLOW-PANIC
	}
	if emitter == nil {
		panic("event emitter cannot be nil") // ALLOW-PANIC
	}
	if srsService == nil {
		panic("srsService cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		words:     words,
		stats:     stats,
		stories:   stories,
		emitter:   emitter,
		srs:       srsService,
		generator: generation.Unavailable{},
		validate:  validator.New(),
		logger:    logger.With(slog.String("component", "learning_service")),
		location:  time.UTC,
		clock:     time.Now,
		sessions:  newSessionRegistry(),
		overrides: newSettingsOverrides(),
		pending:   newPendingWords(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		seed := uint64(s.clock().UnixNano())
		s.rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return s
}

// now returns the current time in the learner timezone.
func (s *Service) now() time.Time {
	return s.clock().In(s.location)
}

// snapshot is what a request loaded from the stores.
type snapshot struct {
	words   []domain.WordRecord
	stats   domain.UserStats
	stories []domain.Story

	// statsLoaded is false when stats are defaults standing in for a
	// failed load; such stats are never written back.
	statsLoaded   bool
	wordsLoaded   bool
	setupRequired bool
	degraded      bool
}

// loadParts selects which stores a request reads.
type loadParts struct {
	words   bool
	stats   bool
	stories bool
}

var loadAll = loadParts{words: true, stats: true, stories: true}

// load reads the requested parts concurrently. A store failure degrades the
// snapshot to empty words, default stats or no user stories instead of
// failing the request. Only context errors are returned.
func (s *Service) load(ctx context.Context, learnerID, today string, parts loadParts) (*snapshot, error) {
	snap := &snapshot{
		words:   []domain.WordRecord{},
		stats:   domain.NewUserStats(today),
		stories: []domain.Story{},
	}
	var mu sync.Mutex
	fail := func(source string, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		mu.Lock()
		defer mu.Unlock()
		snap.degraded = true
		if store.IsSchemaMissing(err) {
			snap.setupRequired = true
		}
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "store read failed, continuing degraded",
			slog.String("learner_id", learnerID),
			slog.String("source", source),
			slog.Bool("schema_missing", store.IsSchemaMissing(err)),
			slog.String("error", redact.Error(err)))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if parts.words {
		g.Go(func() error {
			words, err := s.fetchWords(gctx, learnerID)
			if err != nil {
				return fail("words", err)
			}
			mu.Lock()
			snap.words = words
			snap.wordsLoaded = true
			mu.Unlock()
			return nil
		})
	}
	if parts.stats {
		g.Go(func() error {
			stats, err := s.stats.FetchOrCreate(gctx, learnerID, domain.NewUserStats(today))
			if err != nil {
				return fail("stats", err)
			}
			mu.Lock()
			snap.stats = stats
			snap.statsLoaded = true
			mu.Unlock()
			return nil
		})
	}
	if parts.stories {
		g.Go(func() error {
			stories, err := s.stories.FetchAll(gctx, learnerID)
			if err != nil {
				return fail("stories", err)
			}
			mu.Lock()
			snap.stories = stories
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if snap.words == nil {
		snap.words = []domain.WordRecord{}
	}
	return snap, nil
}

// fetchWords reads the learner's words with queued updates applied.
func (s *Service) fetchWords(ctx context.Context, learnerID string) ([]domain.WordRecord, error) {
	words, err := s.words.FetchAll(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return s.pending.merge(learnerID, words), nil
}

// WordsPersisted tells the service that words were written to the store.
// The task runner calls it when a persist task completes.
func (s *Service) WordsPersisted(learnerID string, words []domain.WordRecord) {
	s.pending.settle(learnerID, words)
}

// loadStats reads the learner's stats and rolls them over to today. The
// returned patch holds the rollover changes, to be merged into the single
// save of the calling operation.
func (s *Service) loadStats(ctx context.Context, learnerID, today string) (domain.UserStats, *domain.StatsPatch, error) {
	stored, err := s.stats.FetchOrCreate(ctx, learnerID, domain.NewUserStats(today))
	if err != nil {
		return domain.UserStats{}, nil, err
	}
	rolled, _ := streak.Rollover(stored, today)
	return rolled, domain.Diff(stored, rolled), nil
}

// saveStats applies patch to base and writes the result once. An empty
// patch writes nothing.
func (s *Service) saveStats(ctx context.Context, learnerID string, base domain.UserStats, patch *domain.StatsPatch) (domain.UserStats, error) {
	if patch.IsEmpty() {
		return base.Clone(), nil
	}
	updated := patch.Apply(base)
	if err := s.stats.Save(ctx, learnerID, updated); err != nil {
		return domain.UserStats{}, err
	}
	return updated, nil
}

// emit publishes an event of the given type.
func (s *Service) emit(ctx context.Context, eventType string, payload any) error {
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	return s.emitter.EmitEvent(ctx, event)
}

// emitActivity publishes an informational event. Failures are logged only.
func (s *Service) emitActivity(ctx context.Context, eventType string, payload any) {
	if err := s.emit(ctx, eventType, payload); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "failed to emit activity event",
			slog.String("event_type", eventType),
			slog.String("error", redact.Error(err)))
	}
}

// isContextErr reports whether err came from a cancelled or expired context.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
