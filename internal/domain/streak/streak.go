// Package streak implements the daily rollover of learner statistics.
//
// The streak check compares the two calendar days as UTC midnights and
// continues the streak when they are less than 48 hours apart. Month and
// year boundaries are not treated specially.
package streak

import (
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// continuityWindow is the largest gap between two login days that still
// continues a streak.
const continuityWindow = 48 * time.Hour

// Continues reports whether a login on today continues a streak whose last
// login was on last. An unparseable day never continues.
func Continues(last, today string) bool {
	prev, err := domain.ParseDay(last)
	if err != nil {
		return false
	}
	cur, err := domain.ParseDay(today)
	if err != nil {
		return false
	}
	return cur.Sub(prev) < continuityWindow
}

// Rollover starts a new day for stats. It returns the stats unchanged and
// false when today is already the last login day. Otherwise the daily
// counter is reset, the login day moves to today and the streak either
// grows by one or restarts at 1. MistakesCount is cumulative and is kept.
func Rollover(stats domain.UserStats, today string) (domain.UserStats, bool) {
	if stats.LastLoginDate == today {
		return stats, false
	}

	out := stats.Clone()
	if Continues(stats.LastLoginDate, today) {
		out.Streak = stats.Streak + 1
	} else {
		out.Streak = 1
	}
	out.WordsLearnedToday = 0
	out.LastLoginDate = today
	return out, true
}
