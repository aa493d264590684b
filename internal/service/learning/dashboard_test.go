package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordIDs(words []domain.WordRecord) []string {
	ids := make([]string, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	return ids
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	t.Run("first visit of the day", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		fresh := newWords("a", "b", "c", "d")
		f.words.seed(learnerID, fresh...)
		f.words.seed(learnerID, studiedWord("weak", domain.WordStatusMistake, 10, baseTime))
		f.words.seed(learnerID, studiedWord("done", domain.WordStatusLearned, 90, baseTime.AddDate(0, 0, -1)))

		stats := domain.NewUserStats(yesterday)
		stats.Streak = 6
		stats.Settings.DailyTarget = 3
		f.stats.seed(learnerID, stats)

		d, err := f.svc.Dashboard(context.Background(), learnerID)
		require.NoError(t, err)

		assert.False(t, d.Degraded)
		assert.False(t, d.SetupRequired)
		assert.Equal(t, 7, d.Stats.Streak)
		assert.Equal(t, today, d.Stats.LastLoginDate)
		assert.Equal(t, wordIDs(fresh[:3]), wordIDs(d.FocusWords))
		assert.Equal(t, 3, d.Stats.LastFocusWordsIndex)

		assert.Equal(t, 3, d.Breakdown.Total)
		assert.Equal(t, 1, d.Breakdown.WeakCount)
		assert.Equal(t, 1, d.Breakdown.ReviewCount)
		assert.True(t, d.Breakdown.StoryAvailable)

		require.NotNil(t, d.NextStory)
		assert.Equal(t, "story_1", d.NextStory.ID)
		assert.Equal(t, 1, d.Profile.LearnedWords)

		assert.Equal(t, 1, f.stats.saveCount(), "rollover and focus saved together")
		if diff := cmp.Diff(d.Stats, f.stats.current(learnerID)); diff != "" {
			t.Errorf("saved stats mismatch (-returned +stored):\n%s", diff)
		}
	})

	t.Run("same day returns the same focus batch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("a", "b", "c")...)
		stats := statsForToday()
		stats.Settings.DailyTarget = 2
		f.stats.seed(learnerID, stats)
		ctx := context.Background()

		first, err := f.svc.Dashboard(ctx, learnerID)
		require.NoError(t, err)
		f.clock.Advance(2 * time.Hour)
		second, err := f.svc.Dashboard(ctx, learnerID)
		require.NoError(t, err)

		assert.Equal(t, wordIDs(first.FocusWords), wordIDs(second.FocusWords))
		assert.Equal(t, 1, f.stats.saveCount(), "second call changes nothing")
	})

	t.Run("preview writes nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		words := newWords("a", "b", "c")
		f.words.seed(learnerID, words...)
		stats := domain.NewUserStats(yesterday)
		stats.Streak = 6
		stats.Settings.DailyTarget = 2
		f.stats.seed(learnerID, stats)
		ctx := context.Background()

		preview, err := f.svc.PreviewDashboard(ctx, learnerID)
		require.NoError(t, err)
		assert.Equal(t, 7, preview.Stats.Streak)
		assert.Equal(t, wordIDs(words[:2]), wordIDs(preview.FocusWords))
		assert.Zero(t, f.stats.saveCount())
		if diff := cmp.Diff(stats.Clone(), f.stats.current(learnerID)); diff != "" {
			t.Errorf("stored stats changed (-seeded +stored):\n%s", diff)
		}

		d, err := f.svc.Dashboard(ctx, learnerID)
		require.NoError(t, err)
		assert.Equal(t, wordIDs(preview.FocusWords), wordIDs(d.FocusWords))
		assert.Equal(t, preview.Breakdown, d.Breakdown)
		assert.Equal(t, 1, f.stats.saveCount())
	})

	t.Run("next day advances the cursor", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		words := newWords("a", "b", "c", "d", "e")
		f.words.seed(learnerID, words...)
		stats := statsForToday()
		stats.Settings.DailyTarget = 2
		f.stats.seed(learnerID, stats)
		ctx := context.Background()

		_, err := f.svc.Dashboard(ctx, learnerID)
		require.NoError(t, err)
		f.clock.Advance(24 * time.Hour)
		got, err := f.svc.FocusWords(ctx, learnerID)
		require.NoError(t, err)

		assert.Equal(t, wordIDs(words[2:4]), wordIDs(got))
		saved := f.stats.current(learnerID)
		assert.Equal(t, 4, saved.LastFocusWordsIndex)
		assert.Equal(t, "2026-03-11", saved.LastFocusWordsDate)
		assert.Equal(t, 5, saved.Streak)
	})

	t.Run("learner timezone decides the day", func(t *testing.T) {
		t.Parallel()
		tokyo := time.FixedZone("JST", 9*60*60)
		f := newFixture(t, WithLocation(tokyo))
		f.clock.now = time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
		f.stats.seed(learnerID, statsForToday())

		d, err := f.svc.Dashboard(context.Background(), learnerID)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-11", d.Stats.LastLoginDate)
		assert.Equal(t, 5, d.Stats.Streak)
	})

	t.Run("store failures degrade", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.fetchErr = errors.New("connection reset")
		f.stats.fetchErr = errors.New("connection reset")
		f.stories.fetchErr = errors.New("connection reset")

		d, err := f.svc.Dashboard(context.Background(), learnerID)
		require.NoError(t, err)
		assert.True(t, d.Degraded)
		assert.False(t, d.SetupRequired)
		assert.Empty(t, d.FocusWords)
		assert.Equal(t, domain.DefaultSettings(), d.Settings)
		assert.Equal(t, today, d.Stats.LastLoginDate)
		assert.Zero(t, f.stats.saveCount(), "default stats are never written back")
	})

	t.Run("missing schema sets setup required", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.fetchErr = store.NewStoreError("word", "fetch", "failed to fetch words", store.ErrSchemaMissing)

		d, err := f.svc.Dashboard(context.Background(), learnerID)
		require.NoError(t, err)
		assert.True(t, d.SetupRequired)
		assert.True(t, d.Degraded)

		_, err = f.svc.FocusWords(context.Background(), learnerID)
		assert.ErrorIs(t, err, ErrSetupRequired)
	})

	t.Run("words unavailable keeps focus bookkeeping", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.fetchErr = errors.New("timeout")
		stats := statsForToday()
		stats.LastFocusWordsIndex = 7
		f.stats.seed(learnerID, stats)

		_, err := f.svc.Dashboard(context.Background(), learnerID)
		require.NoError(t, err)
		assert.Zero(t, f.stats.saveCount())
		assert.Equal(t, 7, f.stats.current(learnerID).LastFocusWordsIndex)
	})

	t.Run("failed save still answers", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.words.seed(learnerID, newWords("a")...)
		f.stats.seed(learnerID, domain.NewUserStats(yesterday))
		f.stats.saveErr = errors.New("read-only transaction")

		d, err := f.svc.Dashboard(context.Background(), learnerID)
		require.NoError(t, err)
		assert.True(t, d.Degraded)
		assert.Equal(t, today, d.Stats.LastLoginDate)
		assert.Len(t, d.FocusWords, 1)
	})

	t.Run("all stories completed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		stats := statsForToday()
		stats.CompletedStoryIDs = []string{"story_1", "story_2", "story_3"}
		f.stats.seed(learnerID, stats)

		d, err := f.svc.Dashboard(context.Background(), learnerID)
		require.NoError(t, err)
		assert.Nil(t, d.NextStory)
		assert.Equal(t, 3, d.Profile.StoriesComplete)
	})
}
