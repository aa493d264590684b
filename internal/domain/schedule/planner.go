package schedule

import (
	"math"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
)

const (
	// WeakWordCap is the fixed ceiling of weak words admitted per session.
	// The weak priority setting does not change it.
	WeakWordCap = 10

	// WeakStrengthThreshold marks LEARNED words below it as weak.
	WeakStrengthThreshold = 40

	minutesPerWord = 0.5
)

// Plan is the output of PlanSession.
type Plan struct {
	Words     []domain.WordRecord     `json:"words"`
	Breakdown domain.SessionBreakdown `json:"breakdown"`
}

// IsEmpty reports whether there is nothing to study.
func (p Plan) IsEmpty() bool {
	return len(p.Words) == 0
}

// buckets partitions words; each word lands in at most one bucket.
type buckets struct {
	weak []domain.WordRecord
	due  []domain.WordRecord
	new  []domain.WordRecord
}

func isWeak(w domain.WordRecord) bool {
	return w.Status == domain.WordStatusMistake ||
		(w.Status == domain.WordStatusLearned && w.StrengthScore < WeakStrengthThreshold)
}

func partition(words []domain.WordRecord, now time.Time) buckets {
	var b buckets
	for _, w := range words {
		switch {
		case isWeak(w):
			b.weak = append(b.weak, w)
		case w.Status == domain.WordStatusLearned && !w.NextReviewDate.After(now):
			b.due = append(b.due, w)
		case w.Status == domain.WordStatusNew:
			b.new = append(b.new, w)
		}
	}
	return b
}

// NewWordLimit returns how many new words the settings allow per day.
func NewWordLimit(settings domain.DailySettings) int {
	if settings.RestDayMode {
		return 0
	}
	return int(math.Floor(float64(max(0, settings.DailyTarget)) * settings.Ratio.NewWordShare()))
}

func take(dst []domain.WordRecord, src []domain.WordRecord, n int) []domain.WordRecord {
	if n <= 0 {
		return dst
	}
	return append(dst, src[:min(n, len(src))]...)
}

// PlanSession selects today's session words.
//
// Weak words (up to WeakWordCap, when enabled) come first, then due reviews
// up to the review limit, then new words until the daily target is reached.
// The breakdown is recomputed from the final statuses, so a low-strength
// LEARNED word admitted as weak is counted as a review, not as weak. A
// target below zero counts as zero.
func PlanSession(words []domain.WordRecord, stats domain.UserStats, now time.Time) Plan {
	settings := stats.Settings
	target := max(0, settings.DailyTarget)
	b := partition(words, now)

	newLimit := NewWordLimit(settings)
	reviewLimit := target - min(newLimit, len(b.new))

	session := make([]domain.WordRecord, 0, target)
	if settings.IncludeWeakWords {
		session = take(session, b.weak, WeakWordCap)
	}
	session = take(session, b.due, reviewLimit-len(session))
	if len(session) < target && !settings.RestDayMode {
		session = take(session, b.new, target-len(session))
	}

	return Plan{
		Words:     session,
		Breakdown: breakdown(session, stats, domain.DayOf(now)),
	}
}

func breakdown(session []domain.WordRecord, stats domain.UserStats, today string) domain.SessionBreakdown {
	bd := domain.SessionBreakdown{
		Total:            len(session),
		EstimatedMinutes: int(math.Ceil(float64(len(session)) * minutesPerWord)),
		StoryAvailable:   stats.LastStoryDate == "" || stats.LastStoryDate != today,
	}
	for _, w := range session {
		switch w.Status {
		case domain.WordStatusNew:
			bd.NewCount++
		case domain.WordStatusLearned:
			bd.ReviewCount++
		case domain.WordStatusMistake:
			bd.WeakCount++
		}
	}
	return bd
}
