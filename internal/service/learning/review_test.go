package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/srs"
	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/phrazzld/vocabflow/internal/store"
	"github.com/phrazzld/vocabflow/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestStartSession(t *testing.T) {
	t.Parallel()

	t.Run("plans new words and persists the rollover", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("alpha", "beta", "gamma")...)
		stats := domain.NewUserStats(yesterday)
		stats.Streak = 2
		stats.WordsLearnedToday = 7
		f.stats.seed(learnerID, stats)

		s, err := f.svc.StartSession(context.Background(), learnerID)
		require.NoError(t, err)
		assert.Equal(t, PhaseLearning, s.Phase)
		assert.Len(t, s.Words, 3)
		assert.Equal(t, 3, s.Breakdown.NewCount)
		assert.Equal(t, 2, s.Breakdown.EstimatedMinutes)

		saved := f.stats.current(learnerID)
		assert.Equal(t, 3, saved.Streak)
		assert.Equal(t, today, saved.LastLoginDate)
		assert.Zero(t, saved.WordsLearnedToday)
		assert.Equal(t, 1, f.stats.saveCount())
		assert.Equal(t, PhaseLearning, f.svc.CurrentSession(context.Background(), learnerID).Phase)
	})

	t.Run("no rollover means no save", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("alpha")...)
		f.stats.seed(learnerID, statsForToday())

		_, err := f.svc.StartSession(context.Background(), learnerID)
		require.NoError(t, err)
		assert.Zero(t, f.stats.saveCount())
	})

	t.Run("nothing to review", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, studiedWord("later", domain.WordStatusLearned, 80, baseTime.AddDate(0, 0, 5)))
		f.stats.seed(learnerID, statsForToday())

		_, err := f.svc.StartSession(context.Background(), learnerID)
		assert.ErrorIs(t, err, ErrNothingToReview)
		assert.Equal(t, PhaseIdle, f.svc.CurrentSession(context.Background(), learnerID).Phase)
	})

	t.Run("rest day with only new words", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("alpha", "beta")...)
		stats := statsForToday()
		stats.Settings.RestDayMode = true
		f.stats.seed(learnerID, stats)

		_, err := f.svc.StartSession(context.Background(), learnerID)
		assert.ErrorIs(t, err, ErrNothingToReview)
	})

	t.Run("today's settings override applies", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("a", "b", "c", "d", "e")...)
		f.stats.seed(learnerID, statsForToday())

		settings := domain.DefaultSettings()
		settings.DailyTarget = 2
		require.NoError(t, f.svc.ApplySettingsToday(context.Background(), learnerID, settings))

		s, err := f.svc.StartSession(context.Background(), learnerID)
		require.NoError(t, err)
		assert.Len(t, s.Words, 2)
		assert.Equal(t, 20, f.stats.current(learnerID).Settings.DailyTarget, "override is not saved")
	})

	t.Run("second start is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("alpha")...)

		_, err := f.svc.StartSession(context.Background(), learnerID)
		require.NoError(t, err)
		_, err = f.svc.StartSession(context.Background(), learnerID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("missing schema", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.fetchErr = store.NewStoreError("word", "fetch", "failed to fetch words", store.ErrSchemaMissing)

		_, err := f.svc.StartSession(context.Background(), learnerID)
		assert.ErrorIs(t, err, ErrSetupRequired)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.fetchErr = context.Canceled
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.svc.StartSession(ctx, learnerID)
		assert.ErrorIs(t, err, context.Canceled)
		var svcErr *ServiceError
		assert.ErrorAs(t, err, &svcErr)
	})
}

func TestQuizFlow(t *testing.T) {
	t.Parallel()

	t.Run("complete quiz records answers", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		words := newWords("alpha", "beta", "gamma")
		f.words.seed(learnerID, words...)
		stats := statsForToday()
		stats.MistakesCount = 5
		f.stats.seed(learnerID, stats)
		ctx := context.Background()

		_, err := f.svc.StartSession(ctx, learnerID)
		require.NoError(t, err)
		q, err := f.svc.BeginQuiz(ctx, learnerID)
		require.NoError(t, err)
		assert.Equal(t, PhaseQuizzing, q.Phase)

		f.clock.Advance(3 * time.Minute)
		outcome, err := f.svc.CompleteQuiz(ctx, learnerID, []domain.QuizResult{
			{WordID: words[0].ID, Correct: true, ResponseTimeMs: 1200},
			{WordID: words[1].ID, Correct: false, ResponseTimeMs: 3000},
			{WordID: words[0].ID, Correct: false, ResponseTimeMs: 500},
			{WordID: "not-in-session", Correct: true},
		})
		require.NoError(t, err)

		assert.Equal(t, 1, outcome.Correct)
		assert.Equal(t, 1, outcome.Mistakes)
		assert.Equal(t, 2, outcome.Learned)
		assert.Equal(t, 2, outcome.Skipped)
		require.Len(t, outcome.Words, 2)
		assert.Equal(t, domain.WordStatusLearning, outcome.Words[0].Status)
		assert.Equal(t, 1200.0, outcome.Words[0].AvgResponseTime)
		assert.Equal(t, domain.WordStatusMistake, outcome.Words[1].Status)

		assert.Equal(t, 2, outcome.Stats.WordsLearnedToday)
		assert.Equal(t, 6, outcome.Stats.MistakesCount)
		assert.Equal(t, 1, f.stats.saveCount(), "one stats save per action")
		assert.Equal(t, outcome.Stats, f.stats.current(learnerID))

		updates := f.emitter.ofType(events.TypeWordsUpdated)
		require.Len(t, updates, 1)
		var payload events.WordsUpdated
		require.NoError(t, updates[0].UnmarshalPayload(&payload))
		assert.Equal(t, learnerID, payload.LearnerID)
		assert.Len(t, payload.Words, 2)

		assert.Equal(t, PhaseIdle, f.svc.CurrentSession(ctx, learnerID).Phase)
	})

	t.Run("quiz requires a learning session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.BeginQuiz(context.Background(), learnerID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("complete requires quizzing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("alpha")...)
		_, err := f.svc.StartSession(context.Background(), learnerID)
		require.NoError(t, err)

		_, err = f.svc.CompleteQuiz(context.Background(), learnerID, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, PhaseLearning, f.svc.CurrentSession(context.Background(), learnerID).Phase)
	})

	t.Run("failed queueing keeps the quiz open", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		words := newWords("alpha")
		f.words.seed(learnerID, words...)
		f.stats.seed(learnerID, statsForToday())
		ctx := context.Background()

		_, err := f.svc.StartSession(ctx, learnerID)
		require.NoError(t, err)
		_, err = f.svc.BeginQuiz(ctx, learnerID)
		require.NoError(t, err)

		f.emitter.setErr(errors.New("task store down"))
		results := []domain.QuizResult{{WordID: words[0].ID, Correct: true, ResponseTimeMs: 900}}
		_, err = f.svc.CompleteQuiz(ctx, learnerID, results)
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "complete_quiz", svcErr.Operation)
		assert.Equal(t, PhaseQuizzing, f.svc.CurrentSession(ctx, learnerID).Phase)
		assert.Zero(t, f.stats.saveCount())

		f.emitter.setErr(nil)
		outcome, err := f.svc.CompleteQuiz(ctx, learnerID, results)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.Learned)
		assert.Equal(t, PhaseIdle, f.svc.CurrentSession(ctx, learnerID).Phase)
	})

	t.Run("abandon from quizzing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("alpha")...)
		ctx := context.Background()

		_, err := f.svc.StartSession(ctx, learnerID)
		require.NoError(t, err)
		_, err = f.svc.BeginQuiz(ctx, learnerID)
		require.NoError(t, err)

		require.NoError(t, f.svc.AbandonSession(ctx, learnerID))
		assert.Equal(t, PhaseIdle, f.svc.CurrentSession(ctx, learnerID).Phase)
		assert.Empty(t, f.emitter.ofType(events.TypeWordsUpdated))

		_, err = f.svc.StartSession(ctx, learnerID)
		assert.NoError(t, err)
	})

	t.Run("abandon when idle", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		assert.NoError(t, f.svc.AbandonSession(context.Background(), learnerID))
	})
}

func TestPractice(t *testing.T) {
	t.Parallel()

	t.Run("practice words are studied words only", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("n1", "n2", "n3")...)
		for _, w := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
			f.words.seed(learnerID, studiedWord(w, domain.WordStatusLearning, 50, baseTime))
		}

		got, err := f.svc.PracticeWords(context.Background(), learnerID)
		require.NoError(t, err)
		assert.Len(t, got, PracticeWordLimit)
		seen := map[string]bool{}
		for _, w := range got {
			assert.NotEqual(t, domain.WordStatusNew, w.Status)
			assert.False(t, seen[w.ID], "no repeats")
			seen[w.ID] = true
		}
	})

	t.Run("fewer studied words than the limit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("n1")...)
		f.words.seed(learnerID, studiedWord("a", domain.WordStatusMistake, 10, baseTime))

		got, err := f.svc.PracticeWords(context.Background(), learnerID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].Word)
	})

	t.Run("practice answers use the review path", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		w := studiedWord("a", domain.WordStatusLearned, 60, baseTime)
		f.words.seed(learnerID, w)
		f.stats.seed(learnerID, statsForToday())

		outcome, err := f.svc.PracticeAnswers(context.Background(), learnerID, []domain.QuizResult{
			{WordID: w.ID, Correct: false, ResponseTimeMs: 2000},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.Mistakes)
		assert.Zero(t, outcome.Learned)
		assert.Equal(t, 1, outcome.Stats.MistakesCount)
		require.Len(t, f.emitter.ofType(events.TypeWordsUpdated), 1)
		assert.Equal(t, PhaseIdle, f.svc.CurrentSession(context.Background(), learnerID).Phase)
	})

	t.Run("fetch failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.fetchErr = errors.New("connection refused")

		_, err := f.svc.PracticeAnswers(context.Background(), learnerID, nil)
		var svcErr *ServiceError
		assert.ErrorAs(t, err, &svcErr)
		_, err = f.svc.PracticeWords(context.Background(), learnerID)
		assert.ErrorAs(t, err, &svcErr)
	})
}

// persistenceHarness wires the service to the real event emitter and task
// runner, as the server does.
type persistenceHarness struct {
	*fixture
	tasks  *task.MemoryTaskStore
	runner *task.TaskRunner
}

func newPersistenceHarness(t *testing.T) *persistenceHarness {
	t.Helper()
	f := &fixture{
		words:   newFakeWordStore(),
		stats:   newFakeStatsStore(),
		stories: newFakeStoryStore(),
		clock:   &fakeClock{now: baseTime},
	}
	tasks := task.NewMemoryTaskStore()
	registry := task.NewRegistry()
	registry.Register(task.TaskTypePersistWords, task.PersistWordsBuilder(f.words))
	cfg := task.DefaultTaskRunnerConfig()
	cfg.QueueSize = 10
	runner := task.NewTaskRunner(tasks, registry, cfg, discardLogger())

	emitter := events.NewInMemoryEventEmitter(discardLogger())
	emitter.RegisterHandler(task.NewPersistenceEventHandler(f.words, runner, discardLogger()))
	f.svc = NewService(f.words, f.stats, f.stories, emitter, srs.NewDefaultService(), discardLogger(),
		WithClock(f.clock.Now))
	runner.SetCompletionHandler(func(done task.Task) {
		if p, ok := done.(*task.PersistWordsTask); ok {
			f.svc.WordsPersisted(p.LearnerID(), p.Words())
		}
	})
	return &persistenceHarness{fixture: f, tasks: tasks, runner: runner}
}

func (h *persistenceHarness) taskStatuses(t *testing.T, status task.TaskStatus) int {
	t.Helper()
	recs, err := h.tasks.ListTasks(context.Background(), status, 0)
	require.NoError(t, err)
	return len(recs)
}

func (h *persistenceHarness) runQuiz(t *testing.T, word domain.WordRecord) *QuizOutcome {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.StartSession(ctx, learnerID)
	require.NoError(t, err)
	_, err = h.svc.BeginQuiz(ctx, learnerID)
	require.NoError(t, err)
	outcome, err := h.svc.CompleteQuiz(ctx, learnerID, []domain.QuizResult{
		{WordID: word.ID, Correct: true, ResponseTimeMs: 800},
	})
	require.NoError(t, err)
	return outcome
}

func TestWordPersistence(t *testing.T) {
	t.Parallel()

	t.Run("delayed persistence does not block the quiz", func(t *testing.T) {
		t.Parallel()
		h := newPersistenceHarness(t)
		h.words.gate = make(chan struct{})
		word := newWords("alpha")[0]
		h.words.seed(learnerID, word)
		require.NoError(t, h.runner.Start(context.Background()))
		defer h.runner.Stop()

		outcome := h.runQuiz(t, word)
		assert.Equal(t, 1, outcome.Learned)
		stored, _ := h.words.get(learnerID, word.ID)
		assert.Equal(t, domain.WordStatusNew, stored.Status, "write still in flight")

		close(h.words.gate)
		require.Eventually(t, func() bool { return h.taskStatuses(t, task.TaskStatusCompleted) == 1 }, waitFor, tick)
		stored, _ = h.words.get(learnerID, word.ID)
		assert.Equal(t, domain.WordStatusLearning, stored.Status)
		assert.Equal(t, 1, stored.TotalAttempts)
	})

	t.Run("answers build on queued updates", func(t *testing.T) {
		t.Parallel()
		h := newPersistenceHarness(t)
		h.words.gate = make(chan struct{})
		word := newWords("alpha")[0]
		h.words.seed(learnerID, word)
		require.NoError(t, h.runner.Start(context.Background()))
		defer h.runner.Stop()
		ctx := context.Background()

		first := h.runQuiz(t, word)
		assert.Equal(t, 1, first.Learned)
		h.clock.Advance(time.Minute)

		// The stored record is still NEW, but the word was learned.
		_, err := h.svc.StartSession(ctx, learnerID)
		assert.ErrorIs(t, err, ErrNothingToReview)
		practice, err := h.svc.PracticeWords(ctx, learnerID)
		require.NoError(t, err)
		require.Len(t, practice, 1)
		assert.Equal(t, 1, practice[0].TotalAttempts)

		second, err := h.svc.PracticeAnswers(ctx, learnerID, []domain.QuizResult{
			{WordID: word.ID, Correct: true, ResponseTimeMs: 900},
		})
		require.NoError(t, err)
		assert.Zero(t, second.Learned)
		require.Len(t, second.Words, 1)
		assert.Equal(t, 2, second.Words[0].TotalAttempts)
		assert.Equal(t, 2, second.Words[0].Repetition)
		assert.Equal(t, 3, second.Words[0].Interval)
		assert.Equal(t, 1, second.Stats.WordsLearnedToday)

		stored, _ := h.words.get(learnerID, word.ID)
		assert.Equal(t, domain.WordStatusNew, stored.Status, "writes still in flight")
		assert.Equal(t, 1, h.svc.pending.count(learnerID))

		close(h.words.gate)
		require.Eventually(t, func() bool { return h.taskStatuses(t, task.TaskStatusCompleted) == 2 }, waitFor, tick)
		stored, _ = h.words.get(learnerID, word.ID)
		assert.Equal(t, 2, stored.TotalAttempts)
		assert.Equal(t, 2, stored.Repetition)
		assert.Equal(t, 3, stored.Interval)
		require.Eventually(t, func() bool { return h.svc.pending.count(learnerID) == 0 }, waitFor, tick)
	})

	t.Run("failed persistence is retried", func(t *testing.T) {
		t.Parallel()
		h := newPersistenceHarness(t)
		h.words.setUpsertErr(errors.New("database unavailable"))
		word := newWords("alpha")[0]
		h.words.seed(learnerID, word)
		require.NoError(t, h.runner.Start(context.Background()))
		defer h.runner.Stop()

		h.runQuiz(t, word)
		require.Eventually(t, func() bool { return h.taskStatuses(t, task.TaskStatusFailed) == 1 }, waitFor, tick)
		stored, _ := h.words.get(learnerID, word.ID)
		assert.Equal(t, domain.WordStatusNew, stored.Status)

		h.words.setUpsertErr(nil)
		n, err := h.runner.RetryFailed(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Eventually(t, func() bool { return h.taskStatuses(t, task.TaskStatusCompleted) == 1 }, waitFor, tick)
		stored, _ = h.words.get(learnerID, word.ID)
		assert.Equal(t, domain.WordStatusLearning, stored.Status)
		assert.Equal(t, 2, h.words.upsertCount())
	})
}
