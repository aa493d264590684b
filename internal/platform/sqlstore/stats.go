package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/store"
)

// StatsStore implements store.StatsStore with one row per learner.
type StatsStore struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsStore creates a StatsStore on db.
func NewStatsStore(db *DB, logger *slog.Logger) *StatsStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
		now:    time.Now,
	}
}

var _ store.StatsStore = (*StatsStore)(nil)

const statsColumns = `streak, last_login_date, words_learned_today, mistakes_count, settings,
	stories_completed_this_week, last_story_date, completed_story_ids,
	last_focus_words_date, last_focus_words_index, today_focus_word_ids`

// FetchOrCreate returns the learner's stats, storing defaults on first use.
func (s *StatsStore) FetchOrCreate(ctx context.Context, learnerID string, defaults domain.UserStats) (domain.UserStats, error) {
	stats, err := s.fetch(ctx, learnerID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		err = MapError(err)
		s.logger.WarnContext(ctx, "failed to fetch stats",
			slog.String("learner_id", learnerID), slog.String("error", err.Error()))
		return domain.UserStats{}, store.NewStoreError("stats", "fetch", "query failed", err)
	}

	defaults = defaults.Clone()
	args, err := statsArgs(defaults)
	if err != nil {
		return domain.UserStats{}, store.NewStoreError("stats", "create", "encode failed", err)
	}
	_, err = s.db.exec(ctx, s.db, `INSERT INTO user_stats (learner_id, updated_at, `+statsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id) DO NOTHING`,
		append([]any{learnerID, s.now().UnixMilli()}, args...)...)
	if err != nil {
		return domain.UserStats{}, store.NewStoreError("stats", "create", "insert failed", MapError(err))
	}
	s.logger.InfoContext(ctx, "created stats for learner", slog.String("learner_id", learnerID))

	// A concurrent first request may have won the insert.
	stats, err = s.fetch(ctx, learnerID)
	if err != nil {
		return domain.UserStats{}, store.NewStoreError("stats", "fetch", "query failed", MapError(err))
	}
	return stats, nil
}

// Save replaces the learner's stats row.
func (s *StatsStore) Save(ctx context.Context, learnerID string, stats domain.UserStats) error {
	args, err := statsArgs(stats.Clone())
	if err != nil {
		return store.NewStoreError("stats", "save", "encode failed", err)
	}
	_, err = s.db.exec(ctx, s.db, `INSERT INTO user_stats (learner_id, updated_at, `+statsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			streak = excluded.streak,
			last_login_date = excluded.last_login_date,
			words_learned_today = excluded.words_learned_today,
			mistakes_count = excluded.mistakes_count,
			settings = excluded.settings,
			stories_completed_this_week = excluded.stories_completed_this_week,
			last_story_date = excluded.last_story_date,
			completed_story_ids = excluded.completed_story_ids,
			last_focus_words_date = excluded.last_focus_words_date,
			last_focus_words_index = excluded.last_focus_words_index,
			today_focus_word_ids = excluded.today_focus_word_ids,
			updated_at = excluded.updated_at`,
		append([]any{learnerID, s.now().UnixMilli()}, args...)...)
	if err != nil {
		err = MapError(err)
		s.logger.WarnContext(ctx, "failed to save stats",
			slog.String("learner_id", learnerID), slog.String("error", err.Error()))
		return store.NewStoreError("stats", "save", "upsert failed", err)
	}
	return nil
}

func (s *StatsStore) fetch(ctx context.Context, learnerID string) (domain.UserStats, error) {
	var (
		st                       domain.UserStats
		settings, completed, ids string
	)
	err := s.db.queryRow(ctx, s.db, `SELECT `+statsColumns+` FROM user_stats WHERE learner_id = ?`, learnerID).
		Scan(&st.Streak, &st.LastLoginDate, &st.WordsLearnedToday, &st.MistakesCount, &settings,
			&st.StoriesCompletedThisWeek, &st.LastStoryDate, &completed,
			&st.LastFocusWordsDate, &st.LastFocusWordsIndex, &ids)
	if err != nil {
		return domain.UserStats{}, err
	}

	st.Settings = domain.DefaultSettings()
	if err := decodeJSON(settings, &st.Settings); err != nil {
		return domain.UserStats{}, err
	}
	if err := decodeJSON(completed, &st.CompletedStoryIDs); err != nil {
		return domain.UserStats{}, err
	}
	if err := decodeJSON(ids, &st.TodayFocusWordIDs); err != nil {
		return domain.UserStats{}, err
	}
	return st.Clone(), nil
}

func statsArgs(st domain.UserStats) ([]any, error) {
	settings, err := encodeJSON(st.Settings)
	if err != nil {
		return nil, err
	}
	completed, err := encodeJSON(st.CompletedStoryIDs)
	if err != nil {
		return nil, err
	}
	ids, err := encodeJSON(st.TodayFocusWordIDs)
	if err != nil {
		return nil, err
	}
	return []any{
		st.Streak, st.LastLoginDate, st.WordsLearnedToday, st.MistakesCount, settings,
		st.StoriesCompletedThisWeek, st.LastStoryDate, completed,
		st.LastFocusWordsDate, st.LastFocusWordsIndex, ids,
	}, nil
}
