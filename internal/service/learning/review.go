package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/schedule"
	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
)

// PracticeWordLimit is the most words PracticeWords returns.
const PracticeWordLimit = 10

// QuizOutcome summarises a batch of recorded answers.
type QuizOutcome struct {
	// Words are the updated words, in answer order.
	Words    []domain.WordRecord `json:"words"`
	Correct  int                 `json:"correct"`
	Mistakes int                 `json:"mistakes"`
	// Learned counts words that left NEW with this batch.
	Learned int `json:"learned"`
	// Skipped counts duplicate answers and answers for unknown words.
	Skipped int              `json:"skipped"`
	Stats   domain.UserStats `json:"stats"`
}

// StartSession rolls the learner's day over and plans a review session.
//
// Returns:
//   - (*Session, nil): the session, now in the Learning phase
//   - (nil, ErrNothingToReview): nothing is due and there are no new words
//   - (nil, ErrInvalidTransition): the learner already has a session
//   - (nil, ErrSetupRequired): the database schema is missing
func (s *Service) StartSession(ctx context.Context, learnerID string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if cur := s.sessions.get(learnerID); cur.Phase != PhaseIdle {
		return nil, fmt.Errorf("%w: cannot start a session while %s", ErrInvalidTransition, cur.Phase)
	}

	day, err := s.prepareDay(ctx, learnerID, loadParts{words: true, stats: true}, dayPlan)
	if err != nil {
		return nil, NewServiceError("start_session", "failed to load learner data", err)
	}
	if day.snap.setupRequired {
		return nil, ErrSetupRequired
	}

	plan := schedule.PlanSession(day.snap.words, s.effective(learnerID, day.stats, day.today), day.now)
	if plan.IsEmpty() {
		log.DebugContext(ctx, "nothing to review", slog.String("learner_id", learnerID))
		return nil, ErrNothingToReview
	}

	session, err := s.sessions.start(learnerID, Session{
		Words:     plan.Words,
		Breakdown: plan.Breakdown,
		StartedAt: day.now,
	})
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "session started",
		slog.String("learner_id", learnerID),
		slog.Int("total", plan.Breakdown.Total),
		slog.Int("new", plan.Breakdown.NewCount),
		slog.Int("review", plan.Breakdown.ReviewCount),
		slog.Int("weak", plan.Breakdown.WeakCount))
	return &session, nil
}

// CurrentSession returns the learner's session. An idle learner gets a
// session in PhaseIdle with no words.
func (s *Service) CurrentSession(_ context.Context, learnerID string) Session {
	return s.sessions.get(learnerID)
}

// BeginQuiz moves the learner's session from Learning to Quizzing.
func (s *Service) BeginQuiz(ctx context.Context, learnerID string) (*Session, error) {
	session, err := s.sessions.transition(learnerID, PhaseLearning, PhaseQuizzing)
	if err != nil {
		return nil, err
	}
	logger.FromContextOrDefault(ctx, s.logger).DebugContext(ctx, "quiz started",
		slog.String("learner_id", learnerID),
		slog.Int("words", len(session.Words)))
	return &session, nil
}

// CompleteQuiz records the quiz answers and ends the session.
//
// Each session word is updated by the memory model at most once: the first
// result for an id wins and results for words outside the session are
// skipped. Updated words go to the asynchronous persistence queue as one
// batch; the day's learned and mistake counters are saved in one stats
// write. If either step fails the session stays in Quizzing so the call can
// be retried.
func (s *Service) CompleteQuiz(ctx context.Context, learnerID string, results []domain.QuizResult) (*QuizOutcome, error) {
	session, err := s.sessions.transition(learnerID, PhaseQuizzing, PhaseIdle)
	if err != nil {
		return nil, err
	}

	outcome, err := s.recordAnswers(ctx, "complete_quiz", learnerID, session.Words, results)
	if err != nil {
		session.Phase = PhaseQuizzing
		if !s.sessions.restore(learnerID, session) {
			logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "session changed while completing quiz",
				slog.String("learner_id", learnerID))
		}
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "session completed",
		slog.String("learner_id", learnerID),
		slog.Int("correct", outcome.Correct),
		slog.Int("mistakes", outcome.Mistakes),
		slog.Int("learned", outcome.Learned),
		slog.Duration("duration", s.now().Sub(session.StartedAt)))
	return outcome, nil
}

// AbandonSession returns the learner to Idle from any phase. Nothing is
// recorded.
func (s *Service) AbandonSession(ctx context.Context, learnerID string) error {
	prev := s.sessions.reset(learnerID)
	if prev != PhaseIdle {
		logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "session abandoned",
			slog.String("learner_id", learnerID),
			slog.String("phase", string(prev)))
	}
	return nil
}

// PracticeWords returns up to PracticeWordLimit randomly chosen words the
// learner has already studied.
func (s *Service) PracticeWords(ctx context.Context, learnerID string) ([]domain.WordRecord, error) {
	words, err := s.fetchWords(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to fetch words",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("practice_words", "failed to fetch words", err)
	}

	pool := make([]domain.WordRecord, 0, len(words))
	for _, w := range words {
		if w.Status != domain.WordStatusNew {
			pool = append(pool, w)
		}
	}

	s.randMu.Lock()
	s.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	s.randMu.Unlock()

	if len(pool) > PracticeWordLimit {
		pool = pool[:PracticeWordLimit]
	}
	return pool, nil
}

// PracticeAnswers records answers given outside a session. The update rule
// and persistence path are the same as for CompleteQuiz; any word of the
// learner's library may be answered.
func (s *Service) PracticeAnswers(ctx context.Context, learnerID string, results []domain.QuizResult) (*QuizOutcome, error) {
	words, err := s.fetchWords(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to fetch words",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("practice_answers", "failed to fetch words", err)
	}
	return s.recordAnswers(ctx, "practice_answers", learnerID, words, results)
}

// recordAnswers applies results to cards, queues the updated words for
// persistence and saves the stats counters once.
func (s *Service) recordAnswers(
	ctx context.Context,
	op, learnerID string,
	cards []domain.WordRecord,
	results []domain.QuizResult,
) (*QuizOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	outcome, err := s.applyAnswers(ctx, learnerID, cards, results, now)
	if err != nil {
		return nil, NewServiceError(op, "failed to apply answers", err)
	}

	if len(outcome.Words) > 0 {
		err := s.emit(ctx, events.TypeWordsUpdated, events.WordsUpdated{
			LearnerID: learnerID,
			Words:     outcome.Words,
		})
		if err != nil {
			log.ErrorContext(ctx, "failed to queue word updates",
				slog.String("learner_id", learnerID),
				slog.Int("words", len(outcome.Words)),
				slog.String("error", redact.Error(err)))
			return nil, NewServiceError(op, "failed to queue word updates", err)
		}
		s.pending.track(learnerID, outcome.Words)
	}

	today := domain.DayOf(now)
	stats, patch, err := s.loadStats(ctx, learnerID, today)
	if err != nil {
		log.ErrorContext(ctx, "failed to load stats",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError(op, "failed to load stats", err)
	}
	if outcome.Learned > 0 || outcome.Mistakes > 0 {
		learned := stats.WordsLearnedToday + outcome.Learned
		mistakes := stats.MistakesCount + outcome.Mistakes
		patch.Merge(&domain.StatsPatch{
			WordsLearnedToday: &learned,
			MistakesCount:     &mistakes,
		})
	}

	saved, err := s.saveStats(ctx, learnerID, stats, patch)
	if err != nil {
		log.ErrorContext(ctx, "failed to save stats",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError(op, "failed to save stats", err)
	}
	outcome.Stats = saved
	return outcome, nil
}

// applyAnswers runs the memory model over results. The first result per
// word id wins; results for ids not in cards are skipped.
func (s *Service) applyAnswers(
	ctx context.Context,
	learnerID string,
	cards []domain.WordRecord,
	results []domain.QuizResult,
	now time.Time,
) (*QuizOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	byID := make(map[string]domain.WordRecord, len(cards))
	for _, w := range cards {
		byID[w.ID] = w
	}
	answered := make(map[string]bool, len(results))

	outcome := &QuizOutcome{Words: make([]domain.WordRecord, 0, len(results))}
	for _, r := range results {
		if answered[r.WordID] {
			outcome.Skipped++
			log.DebugContext(ctx, "duplicate answer ignored",
				slog.String("learner_id", learnerID),
				slog.String("word_id", r.WordID))
			continue
		}
		word, ok := byID[r.WordID]
		if !ok {
			outcome.Skipped++
			log.WarnContext(ctx, "answer for unknown word skipped",
				slog.String("learner_id", learnerID),
				slog.String("word_id", r.WordID))
			continue
		}
		answered[r.WordID] = true

		updated, err := s.srs.ApplyAnswer(&word, r.Correct, r.ResponseTimeMs, now)
		if err != nil {
			return nil, err
		}
		if word.Status == domain.WordStatusNew && updated.Status != domain.WordStatusNew {
			outcome.Learned++
		}
		if r.Correct {
			outcome.Correct++
		} else {
			outcome.Mistakes++
		}
		outcome.Words = append(outcome.Words, *updated)
	}
	return outcome, nil
}
