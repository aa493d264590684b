package domain

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the calendar-day format used for every day string.
const DateLayout = "2006-01-02"

// DayOf formats t as a calendar day in t's own location.
func DayOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDay parses a YYYY-MM-DD string as midnight UTC.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}
	return t, nil
}

// Ratio is the new/review mix mode.
type Ratio string

// Ratio modes and the share of the daily target given to new words.
const (
	RatioRetention Ratio = "RETENTION"
	RatioBalanced  Ratio = "BALANCED"
	RatioGrowth    Ratio = "GROWTH"
)

// NewWordShare returns the fraction of the daily target reserved for new
// words. Unknown modes behave like BALANCED.
func (r Ratio) NewWordShare() float64 {
	switch r {
	case RatioRetention:
		return 0.2
	case RatioGrowth:
		return 0.8
	default:
		return 0.5
	}
}

// WeakPriority is the learner's stated weak-word emphasis. It is stored and
// returned but does not change the weak-word cap.
type WeakPriority string

// Weak word priority levels.
const (
	WeakPriorityLow    WeakPriority = "LOW"
	WeakPriorityMedium WeakPriority = "MEDIUM"
	WeakPriorityHigh   WeakPriority = "HIGH"
)

// StoryTarget is the story reading cadence.
type StoryTarget string

// Story cadence options.
const (
	StoryTargetOff     StoryTarget = "OFF"
	StoryTargetDaily   StoryTarget = "DAILY"
	StoryTargetWeekly3 StoryTarget = "WEEKLY_3"
)

// DailySettings controls how sessions are planned.
type DailySettings struct {
	DailyTarget           int          `json:"dailyTarget" validate:"required,gte=1,lte=500"`
	Ratio                 Ratio        `json:"ratio" validate:"required,oneof=RETENTION BALANCED GROWTH"`
	IncludeWeakWords      bool         `json:"includeWeakWords"`
	WeakPriority          WeakPriority `json:"weakPriority" validate:"required,oneof=LOW MEDIUM HIGH"`
	RestDayMode           bool         `json:"restDayMode"`
	MaxSessionTimeMinutes int          `json:"maxSessionTimeMinutes" validate:"gte=0,lte=600"`
	StoryTarget           StoryTarget  `json:"storyTarget" validate:"required,oneof=OFF DAILY WEEKLY_3"`
}

// DefaultSettings returns the settings a new learner starts with.
func DefaultSettings() DailySettings {
	return DailySettings{
		DailyTarget:           20,
		Ratio:                 RatioBalanced,
		IncludeWeakWords:      true,
		WeakPriority:          WeakPriorityMedium,
		RestDayMode:           false,
		MaxSessionTimeMinutes: 0,
		StoryTarget:           StoryTargetDaily,
	}
}

// UserStats is the per-learner progress record.
type UserStats struct {
	Streak            int    `json:"streak"`
	LastLoginDate     string `json:"lastLoginDate"`
	WordsLearnedToday int    `json:"wordsLearnedToday"`
	// MistakesCount is cumulative and survives the daily rollover.
	MistakesCount int           `json:"mistakesCount"`
	Settings      DailySettings `json:"settings"`

	StoriesCompletedThisWeek int      `json:"storiesCompletedThisWeek"`
	LastStoryDate            string   `json:"lastStoryDate,omitempty"`
	CompletedStoryIDs        []string `json:"completedStoryIds"`

	LastFocusWordsDate string `json:"lastFocusWordsDate,omitempty"`
	// LastFocusWordsIndex is a high-water mark into the NEW-word pool and
	// never decreases.
	LastFocusWordsIndex int      `json:"lastFocusWordsIndex"`
	TodayFocusWordIDs   []string `json:"todayFocusWordIds"`
}

// NewUserStats returns the first-use record for a learner seen on today.
func NewUserStats(today string) UserStats {
	return UserStats{
		LastLoginDate:     today,
		Settings:          DefaultSettings(),
		CompletedStoryIDs: []string{},
		TodayFocusWordIDs: []string{},
	}
}

// Clone returns a deep copy so callers can mutate slices freely.
func (s UserStats) Clone() UserStats {
	c := s
	c.CompletedStoryIDs = slices.Clone(s.CompletedStoryIDs)
	c.TodayFocusWordIDs = slices.Clone(s.TodayFocusWordIDs)
	if c.CompletedStoryIDs == nil {
		c.CompletedStoryIDs = []string{}
	}
	if c.TodayFocusWordIDs == nil {
		c.TodayFocusWordIDs = []string{}
	}
	return c
}

// HasCompletedStory reports whether id is in the completed set.
func (s UserStats) HasCompletedStory(id string) bool {
	return slices.Contains(s.CompletedStoryIDs, id)
}

// StatsPatch is a partial update of UserStats. Nil fields are left alone.
// Patches computed during one user action are merged and applied once.
type StatsPatch struct {
	Streak                   *int           `json:"streak,omitempty"`
	LastLoginDate            *string        `json:"lastLoginDate,omitempty"`
	WordsLearnedToday        *int           `json:"wordsLearnedToday,omitempty"`
	MistakesCount            *int           `json:"mistakesCount,omitempty"`
	Settings                 *DailySettings `json:"settings,omitempty"`
	StoriesCompletedThisWeek *int           `json:"storiesCompletedThisWeek,omitempty"`
	LastStoryDate            *string        `json:"lastStoryDate,omitempty"`
	CompletedStoryIDs        []string       `json:"completedStoryIds,omitempty"`
	LastFocusWordsDate       *string        `json:"lastFocusWordsDate,omitempty"`
	LastFocusWordsIndex      *int           `json:"lastFocusWordsIndex,omitempty"`
	TodayFocusWordIDs        []string       `json:"todayFocusWordIds,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *StatsPatch) IsEmpty() bool {
	return p == nil || (p.Streak == nil && p.LastLoginDate == nil && p.WordsLearnedToday == nil &&
		p.MistakesCount == nil && p.Settings == nil && p.StoriesCompletedThisWeek == nil &&
		p.LastStoryDate == nil && p.CompletedStoryIDs == nil && p.LastFocusWordsDate == nil &&
		p.LastFocusWordsIndex == nil && p.TodayFocusWordIDs == nil)
}

// Merge folds other into p. Fields set in other win.
func (p *StatsPatch) Merge(other *StatsPatch) {
	if other == nil {
		return
	}
	if other.Streak != nil {
		p.Streak = other.Streak
	}
	if other.LastLoginDate != nil {
		p.LastLoginDate = other.LastLoginDate
	}
	if other.WordsLearnedToday != nil {
		p.WordsLearnedToday = other.WordsLearnedToday
	}
	if other.MistakesCount != nil {
		p.MistakesCount = other.MistakesCount
	}
	if other.Settings != nil {
		p.Settings = other.Settings
	}
	if other.StoriesCompletedThisWeek != nil {
		p.StoriesCompletedThisWeek = other.StoriesCompletedThisWeek
	}
	if other.LastStoryDate != nil {
		p.LastStoryDate = other.LastStoryDate
	}
	if other.CompletedStoryIDs != nil {
		p.CompletedStoryIDs = slices.Clone(other.CompletedStoryIDs)
	}
	if other.LastFocusWordsDate != nil {
		p.LastFocusWordsDate = other.LastFocusWordsDate
	}
	if other.LastFocusWordsIndex != nil {
		p.LastFocusWordsIndex = other.LastFocusWordsIndex
	}
	if other.TodayFocusWordIDs != nil {
		p.TodayFocusWordIDs = slices.Clone(other.TodayFocusWordIDs)
	}
}

// Apply returns a copy of s with the patch applied.
func (p *StatsPatch) Apply(s UserStats) UserStats {
	out := s.Clone()
	if p == nil {
		return out
	}
	if p.Streak != nil {
		out.Streak = *p.Streak
	}
	if p.LastLoginDate != nil {
		out.LastLoginDate = *p.LastLoginDate
	}
	if p.WordsLearnedToday != nil {
		out.WordsLearnedToday = *p.WordsLearnedToday
	}
	if p.MistakesCount != nil {
		out.MistakesCount = *p.MistakesCount
	}
	if p.Settings != nil {
		out.Settings = *p.Settings
	}
	if p.StoriesCompletedThisWeek != nil {
		out.StoriesCompletedThisWeek = *p.StoriesCompletedThisWeek
	}
	if p.LastStoryDate != nil {
		out.LastStoryDate = *p.LastStoryDate
	}
	if p.CompletedStoryIDs != nil {
		out.CompletedStoryIDs = slices.Clone(p.CompletedStoryIDs)
	}
	if p.LastFocusWordsDate != nil {
		out.LastFocusWordsDate = *p.LastFocusWordsDate
	}
	if p.LastFocusWordsIndex != nil {
		out.LastFocusWordsIndex = *p.LastFocusWordsIndex
	}
	if p.TodayFocusWordIDs != nil {
		out.TodayFocusWordIDs = slices.Clone(p.TodayFocusWordIDs)
	}
	return out
}

// Diff returns the patch that turns before into after. Unchanged fields are
// left nil.
func Diff(before, after UserStats) *StatsPatch {
	p := &StatsPatch{}
	if before.Streak != after.Streak {
		p.Streak = &after.Streak
	}
	if before.LastLoginDate != after.LastLoginDate {
		p.LastLoginDate = &after.LastLoginDate
	}
	if before.WordsLearnedToday != after.WordsLearnedToday {
		p.WordsLearnedToday = &after.WordsLearnedToday
	}
	if before.MistakesCount != after.MistakesCount {
		p.MistakesCount = &after.MistakesCount
	}
	if before.Settings != after.Settings {
		p.Settings = &after.Settings
	}
	if before.StoriesCompletedThisWeek != after.StoriesCompletedThisWeek {
		p.StoriesCompletedThisWeek = &after.StoriesCompletedThisWeek
	}
	if before.LastStoryDate != after.LastStoryDate {
		p.LastStoryDate = &after.LastStoryDate
	}
	if !slices.Equal(before.CompletedStoryIDs, after.CompletedStoryIDs) {
		p.CompletedStoryIDs = slices.Clone(after.CompletedStoryIDs)
	}
	if before.LastFocusWordsDate != after.LastFocusWordsDate {
		p.LastFocusWordsDate = &after.LastFocusWordsDate
	}
	if before.LastFocusWordsIndex != after.LastFocusWordsIndex {
		p.LastFocusWordsIndex = &after.LastFocusWordsIndex
	}
	if !slices.Equal(before.TodayFocusWordIDs, after.TodayFocusWordIDs) {
		p.TodayFocusWordIDs = slices.Clone(after.TodayFocusWordIDs)
	}
	return p
}

// AddCompletedStory returns a patch adding id to the completed set,
// stamping lastStoryDate and bumping the weekly counter.
func AddCompletedStory(s UserStats, id, today string) *StatsPatch {
	ids := slices.Clone(s.CompletedStoryIDs)
	if !slices.Contains(ids, id) {
		ids = append(ids, id)
	}
	if ids == nil {
		ids = []string{}
	}
	count := s.StoriesCompletedThisWeek + 1
	return &StatsPatch{
		CompletedStoryIDs:        ids,
		LastStoryDate:            &today,
		StoriesCompletedThisWeek: &count,
	}
}
