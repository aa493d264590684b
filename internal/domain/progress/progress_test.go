package progress

import (
	"testing"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStatus(n int, status domain.WordStatus) []domain.WordRecord {
	out := make([]domain.WordRecord, n)
	for i := range out {
		out[i].Status = status
	}
	return out
}

func TestComputeXPAndLevel(t *testing.T) {
	t.Parallel()

	words := append(withStatus(12, domain.WordStatusLearned), withStatus(3, domain.WordStatusLearning)...)
	words = append(words, withStatus(4, domain.WordStatusNew)...)
	stats := domain.NewUserStats("2026-03-10")
	stats.CompletedStoryIDs = []string{"story_1", "story_2"}

	p := Compute(words, stats)

	// 12*10 + 3*5 + 2*50 = 235
	assert.Equal(t, 235, p.XP)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 400, p.NextLevelXP)
	assert.InDelta(t, 17.5, p.LevelProgress, 1e-9)
	assert.Equal(t, 12, p.LearnedWords)
	assert.Equal(t, 3, p.LearningWords)
	assert.Equal(t, 2, p.StoriesComplete)
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()

	p := Compute(nil, domain.NewUserStats("2026-03-10"))

	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 200, p.NextLevelXP)
	assert.Zero(t, p.LevelProgress)
	assert.Len(t, p.Badges, 6)
	assert.Zero(t, p.UnlockedBadges)
}

func TestComputeBadges(t *testing.T) {
	t.Parallel()

	stats := domain.NewUserStats("2026-03-10")
	stats.Streak = 3
	stats.CompletedStoryIDs = []string{"a", "b", "c", "d", "e"}

	p := Compute(withStatus(10, domain.WordStatusLearned), stats)

	unlocked := map[string]bool{}
	for _, b := range p.Badges {
		unlocked[b.ID] = b.Unlocked
	}
	assert.Equal(t, map[string]bool{
		"streak_3":  true,
		"streak_7":  false,
		"words_10":  true,
		"words_50":  false,
		"stories_1": true,
		"stories_5": true,
	}, unlocked)
	assert.Equal(t, 4, p.UnlockedBadges)
}

func TestFilterLibrary(t *testing.T) {
	t.Parallel()

	words := []domain.WordRecord{
		{ID: "1", Word: "Serendipity", Meaning: "happy accident", Status: domain.WordStatusNew},
		{ID: "2", Word: "ephemeral", Meaning: "short-lived", Example: "An ephemeral ACCIDENT", Status: domain.WordStatusLearning, TotalAttempts: 2},
		{ID: "3", Word: "ubiquitous", Meaning: "everywhere", Status: domain.WordStatusMistake, TotalAttempts: 1},
		{ID: "4", Word: "laconic", Meaning: "brief", Status: domain.WordStatusLearned, TotalAttempts: 5},
	}

	testCases := []struct {
		name   string
		filter LibraryFilter
		want   []string
	}{
		{"zero filter", LibraryFilter{}, []string{"1", "2", "3", "4"}},
		{"query across fields", LibraryFilter{Query: "  Accident "}, []string{"1", "2"}},
		{"status", LibraryFilter{Status: domain.WordStatusMistake}, []string{"3"}},
		{"practiced", LibraryFilter{Practice: FilterPracticed}, []string{"2", "3", "4"}},
		{"not practiced", LibraryFilter{Practice: FilterNotPracticed}, []string{"1"}},
		{"combined", LibraryFilter{Query: "e", Practice: FilterPracticed, Status: domain.WordStatusLearned}, []string{"4"}},
		{"no match", LibraryFilter{Query: "zzz"}, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			lib := FilterLibrary(words, tc.filter)
			got := make([]string, 0, len(lib.Words))
			for _, w := range lib.Words {
				got = append(got, w.ID)
			}
			assert.Equal(t, tc.want, got)

			require.Equal(t, 4, lib.Summary.Total)
			assert.Equal(t, 3, lib.Summary.Practiced)
			assert.Equal(t, 1, lib.Summary.NotPracticed)
			assert.Equal(t, 1, lib.Summary.ByStatus[domain.WordStatusLearned])
		})
	}
}

func TestPracticeFilterValid(t *testing.T) {
	t.Parallel()

	for _, f := range []PracticeFilter{"", FilterAll, FilterPracticed, FilterNotPracticed} {
		assert.True(t, f.Valid(), f)
	}
	assert.False(t, PracticeFilter("SOMETIMES").Valid())
}
