package learning

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
)

type settingsOverride struct {
	day      string
	settings domain.DailySettings
}

// settingsOverrides holds settings a learner applied for the current day
// only. They are never persisted and lapse when the day changes.
type settingsOverrides struct {
	mu      sync.Mutex
	entries map[string]settingsOverride
}

func newSettingsOverrides() *settingsOverrides {
	return &settingsOverrides{entries: make(map[string]settingsOverride)}
}

func (o *settingsOverrides) set(learnerID, day string, settings domain.DailySettings) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries[learnerID] = settingsOverride{day: day, settings: settings}
}

// lookup returns the override for today. Stale entries are dropped.
func (o *settingsOverrides) lookup(learnerID, today string) (domain.DailySettings, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[learnerID]
	if !ok {
		return domain.DailySettings{}, false
	}
	if e.day != today {
		delete(o.entries, learnerID)
		return domain.DailySettings{}, false
	}
	return e.settings, true
}

func (o *settingsOverrides) clear(learnerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, learnerID)
}

// effective returns stats with today's settings override applied, if any.
// The result is only used for planning and is never saved.
func (s *Service) effective(learnerID string, stats domain.UserStats, today string) domain.UserStats {
	settings, ok := s.overrides.lookup(learnerID, today)
	if !ok {
		return stats
	}
	out := stats.Clone()
	out.Settings = settings
	return out
}

func (s *Service) validateSettings(settings domain.DailySettings) error {
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// ApplySettingsToday uses settings for the rest of the learner's current
// day without changing the saved defaults.
func (s *Service) ApplySettingsToday(ctx context.Context, learnerID string, settings domain.DailySettings) error {
	if err := s.validateSettings(settings); err != nil {
		return err
	}
	today := domain.DayOf(s.now())
	s.overrides.set(learnerID, today, settings)
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "settings applied for today",
		slog.String("learner_id", learnerID),
		slog.String("day", today))
	return nil
}

// SaveDefaultSettings stores settings as the learner's defaults and clears
// any override for today. It returns the saved stats.
func (s *Service) SaveDefaultSettings(ctx context.Context, learnerID string, settings domain.DailySettings) (domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := s.validateSettings(settings); err != nil {
		return domain.UserStats{}, err
	}

	today := domain.DayOf(s.now())
	stats, patch, err := s.loadStats(ctx, learnerID, today)
	if err != nil {
		log.ErrorContext(ctx, "failed to load stats",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return domain.UserStats{}, NewServiceError("save_settings", "failed to load stats", err)
	}
	patch.Merge(&domain.StatsPatch{Settings: &settings})

	saved, err := s.saveStats(ctx, learnerID, stats, patch)
	if err != nil {
		log.ErrorContext(ctx, "failed to save settings",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return domain.UserStats{}, NewServiceError("save_settings", "failed to save stats", err)
	}
	s.overrides.clear(learnerID)
	return saved, nil
}
