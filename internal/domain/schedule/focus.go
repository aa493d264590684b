package schedule

import (
	"slices"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// FocusResult is today's focus batch. Patch is nil when the stats did not
// change; Repaired is set when stored ids could not all be resolved and the
// batch was rebuilt from the cursor.
type FocusResult struct {
	Words    []domain.WordRecord
	Patch    *domain.StatsPatch
	Repaired bool
}

// focusPool returns never-attempted NEW words in input order.
func focusPool(words []domain.WordRecord) []domain.WordRecord {
	pool := make([]domain.WordRecord, 0, len(words))
	for _, w := range words {
		if w.Status == domain.WordStatusNew && w.TotalAttempts == 0 {
			pool = append(pool, w)
		}
	}
	return pool
}

// TodayFocusWords returns the day's fixed batch of new words.
//
// On the first call of a day the batch is the next DailyTarget words of the
// pool starting at the stored cursor, and the cursor advances past it. Later
// calls on the same day return the recorded batch unchanged. If a recorded id
// no longer resolves the batch is rebuilt from the current cursor, which may
// advance it again. The cursor never moves backwards.
func TodayFocusWords(words []domain.WordRecord, stats domain.UserStats, today string) FocusResult {
	if stats.LastFocusWordsDate == today && len(stats.TodayFocusWordIDs) > 0 {
		batch := make([]domain.WordRecord, 0, len(stats.TodayFocusWordIDs))
		for _, w := range words {
			if slices.Contains(stats.TodayFocusWordIDs, w.ID) {
				batch = append(batch, w)
			}
		}
		if len(batch) == len(stats.TodayFocusWordIDs) {
			return FocusResult{Words: batch}
		}
		res := allocate(words, stats, today)
		res.Repaired = true
		return res
	}

	return allocate(words, stats, today)
}

func allocate(words []domain.WordRecord, stats domain.UserStats, today string) FocusResult {
	pool := focusPool(words)
	start := max(0, stats.LastFocusWordsIndex)
	end := min(start+max(0, stats.Settings.DailyTarget), len(pool))

	var batch []domain.WordRecord
	if start < end {
		batch = slices.Clone(pool[start:end])
	}

	ids := make([]string, 0, len(batch))
	for _, w := range batch {
		ids = append(ids, w.ID)
	}

	cursor := max(stats.LastFocusWordsIndex, end)
	return FocusResult{
		Words: batch,
		Patch: &domain.StatsPatch{
			LastFocusWordsDate:  &today,
			LastFocusWordsIndex: &cursor,
			TodayFocusWordIDs:   ids,
		},
	}
}
