package learning

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/progress"
	"github.com/phrazzld/vocabflow/internal/domain/schedule"
	"github.com/phrazzld/vocabflow/internal/domain/story"
	"github.com/phrazzld/vocabflow/internal/domain/streak"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
)

// Dashboard is the learner's home screen in one response.
type Dashboard struct {
	Stats domain.UserStats `json:"stats"`
	// Settings are the settings in effect today, including any override.
	Settings   domain.DailySettings    `json:"settings"`
	FocusWords []domain.WordRecord     `json:"focusWords"`
	Breakdown  domain.SessionBreakdown `json:"breakdown"`
	Profile    progress.Profile        `json:"profile"`
	NextStory  *domain.Story           `json:"nextStory,omitempty"`

	// SetupRequired is set when the database schema does not exist yet.
	SetupRequired bool `json:"setupRequired"`
	// Degraded is set when some data could not be loaded or saved and the
	// response was built from defaults.
	Degraded bool `json:"degraded"`
}

// dayState is a learner's data after the daily rollover.
type dayState struct {
	now   time.Time
	today string
	snap  *snapshot
	// stats are rolled over and, when requested, carry today's focus
	// allocation. Planning should go through effective.
	stats domain.UserStats
	focus []domain.WordRecord
}

// dayMode selects what prepareDay does beyond the rollover.
type dayMode int

const (
	// dayPlan rolls over and saves; no focus words.
	dayPlan dayMode = iota
	// dayAllocate also allocates today's focus words and saves them.
	dayAllocate
	// dayPreview computes the focus words and saves nothing.
	dayPreview
)

// prepareDay loads the learner's data, applies the rollover and, depending
// on mode, allocates today's focus words, then saves the merged stats change
// once. Rollover always happens before any planning.
func (s *Service) prepareDay(ctx context.Context, learnerID string, parts loadParts, mode dayMode) (*dayState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()
	today := domain.DayOf(now)

	snap, err := s.load(ctx, learnerID, today, parts)
	if err != nil {
		return nil, err
	}

	rolled, changed := streak.Rollover(snap.stats, today)
	if changed {
		log.DebugContext(ctx, "stats rolled over",
			slog.String("learner_id", learnerID),
			slog.String("day", today),
			slog.Int("streak", rolled.Streak))
	}
	patch := domain.Diff(snap.stats, rolled)

	state := &dayState{now: now, today: today, snap: snap}
	if mode != dayPlan {
		focus := schedule.TodayFocusWords(snap.words, s.effective(learnerID, rolled, today), today)
		if focus.Repaired {
			log.InfoContext(ctx, "focus words repaired",
				slog.String("learner_id", learnerID),
				slog.String("day", today),
				slog.Int("count", len(focus.Words)))
		}
		if snap.wordsLoaded {
			patch.Merge(focus.Patch)
		}
		state.focus = focus.Words
		if state.focus == nil {
			state.focus = []domain.WordRecord{}
		}
	}

	if !snap.statsLoaded || mode == dayPreview {
		state.stats = patch.Apply(snap.stats)
		return state, nil
	}

	saved, err := s.saveStats(ctx, learnerID, snap.stats, patch)
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		log.WarnContext(ctx, "failed to save stats, continuing degraded",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		snap.degraded = true
		saved = patch.Apply(snap.stats)
	}
	state.stats = saved
	return state, nil
}

// Dashboard rolls the learner's day over, allocates today's focus words and
// returns them together with the planned session breakdown, profile
// progress and the recommended story.
//
// Store failures never fail the call: the dashboard is built from what
// could be loaded and flagged Degraded (and SetupRequired when the schema
// is missing). Only context errors are returned.
func (s *Service) Dashboard(ctx context.Context, learnerID string) (*Dashboard, error) {
	day, err := s.prepareDay(ctx, learnerID, loadAll, dayAllocate)
	if err != nil {
		return nil, NewServiceError("dashboard", "failed to load learner data", err)
	}
	return s.dashboard(learnerID, day), nil
}

// PreviewDashboard returns what Dashboard would return without saving the
// rollover or the focus allocation. Default stats are still created for a
// learner who has none.
func (s *Service) PreviewDashboard(ctx context.Context, learnerID string) (*Dashboard, error) {
	day, err := s.prepareDay(ctx, learnerID, loadAll, dayPreview)
	if err != nil {
		return nil, NewServiceError("preview_dashboard", "failed to load learner data", err)
	}
	return s.dashboard(learnerID, day), nil
}

func (s *Service) dashboard(learnerID string, day *dayState) *Dashboard {
	eff := s.effective(learnerID, day.stats, day.today)
	plan := schedule.PlanSession(day.snap.words, eff, day.now)

	d := &Dashboard{
		Stats:         day.stats,
		Settings:      eff.Settings,
		FocusWords:    day.focus,
		Breakdown:     plan.Breakdown,
		Profile:       progress.Compute(day.snap.words, day.stats),
		SetupRequired: day.snap.setupRequired,
		Degraded:      day.snap.degraded,
	}
	if next, ok := story.Recommend(day.stats.CompletedStoryIDs, story.Catalog(day.snap.stories)); ok {
		d.NextStory = &next
	}
	return d
}

// FocusWords returns today's batch of new words, allocating it on the first
// call of the day. Repeated calls on the same day return the same batch.
func (s *Service) FocusWords(ctx context.Context, learnerID string) ([]domain.WordRecord, error) {
	day, err := s.prepareDay(ctx, learnerID, loadParts{words: true, stats: true}, dayAllocate)
	if err != nil {
		return nil, NewServiceError("focus_words", "failed to load learner data", err)
	}
	if day.snap.setupRequired {
		return nil, ErrSetupRequired
	}
	return day.focus, nil
}
