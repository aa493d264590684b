package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/store"
)

// StoryStore implements store.StoryStore for learner-imported stories.
type StoryStore struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStoryStore creates a StoryStore on db.
func NewStoryStore(db *DB, logger *slog.Logger) *StoryStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "story_store")),
		now:    time.Now,
	}
}

var _ store.StoryStore = (*StoryStore)(nil)

// FetchAll returns the learner's stories, oldest first.
func (s *StoryStore) FetchAll(ctx context.Context, learnerID string) ([]domain.Story, error) {
	rows, err := s.db.query(ctx, s.db, `SELECT id, title, content, target_words, questions, is_custom, created_at
		FROM stories WHERE learner_id = ? ORDER BY seq, id`, learnerID)
	if err != nil {
		err = MapError(err)
		s.logger.WarnContext(ctx, "failed to fetch stories",
			slog.String("learner_id", learnerID), slog.String("error", err.Error()))
		return nil, store.NewStoreError("story", "fetch", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	stories := []domain.Story{}
	for rows.Next() {
		var (
			st                 domain.Story
			targets, questions string
			created            int64
		)
		if err := rows.Scan(&st.ID, &st.Title, &st.Content, &targets, &questions, &st.IsCustom, &created); err != nil {
			return nil, store.NewStoreError("story", "fetch", "scan failed", err)
		}
		if err := decodeJSON(targets, &st.TargetWords); err != nil {
			return nil, store.NewStoreError("story", "fetch", "decode failed", err)
		}
		if err := decodeJSON(questions, &st.Questions); err != nil {
			return nil, store.NewStoreError("story", "fetch", "decode failed", err)
		}
		st.CreatedAt = fromMillis(created)
		stories = append(stories, st)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("story", "fetch", "iteration failed", MapError(err))
	}
	return stories, nil
}

// Insert stores a new story. Reusing an id returns store.ErrDuplicate.
func (s *StoryStore) Insert(ctx context.Context, learnerID string, st domain.Story) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if st.TargetWords == nil {
		st.TargetWords = []string{}
	}
	if st.Questions == nil {
		st.Questions = []domain.StoryQuestion{}
	}
	targets, err := encodeJSON(st.TargetWords)
	if err != nil {
		return store.NewStoreError("story", "insert", "encode failed", err)
	}
	questions, err := encodeJSON(st.Questions)
	if err != nil {
		return store.NewStoreError("story", "insert", "encode failed", err)
	}
	created := st.CreatedAt
	if created.IsZero() {
		created = s.now()
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		seq, err := s.db.nextSeq(ctx, tx, "stories", learnerID)
		if err != nil {
			return err
		}
		_, err = s.db.exec(ctx, tx, `INSERT INTO stories
			(learner_id, id, seq, title, content, target_words, questions, is_custom, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			learnerID, st.ID, seq, st.Title, st.Content, targets, questions, st.IsCustom, toMillis(created))
		return MapError(err)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to insert story",
			slog.String("learner_id", learnerID),
			slog.String("story_id", st.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("story", "insert", "insert failed", err)
	}
	return nil
}
