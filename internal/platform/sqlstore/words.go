package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/store"
)

const wordColumns = `id, word, meaning, example, language, status, interval_days, repetition,
	next_review_at, last_review_at, strength_score, mistake_count, total_attempts, avg_response_ms`

// WordStore implements store.WordStore.
type WordStore struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewWordStore creates a WordStore on db.
func NewWordStore(db *DB, logger *slog.Logger) *WordStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
		now:    time.Now,
	}
}

var _ store.WordStore = (*WordStore)(nil)

// FetchAll returns the learner's words in insertion order.
func (s *WordStore) FetchAll(ctx context.Context, learnerID string) ([]domain.WordRecord, error) {
	rows, err := s.db.query(ctx, s.db,
		`SELECT `+wordColumns+` FROM words WHERE learner_id = ? ORDER BY seq, id`, learnerID)
	if err != nil {
		err = MapError(err)
		s.logger.WarnContext(ctx, "failed to fetch words",
			slog.String("learner_id", learnerID), slog.String("error", err.Error()))
		return nil, store.NewStoreError("word", "fetch", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	words := []domain.WordRecord{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, store.NewStoreError("word", "fetch", "scan failed", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("word", "fetch", "iteration failed", MapError(err))
	}
	return words, nil
}

// Insert appends new words to the learner's library. An id that already
// exists fails the whole batch with store.ErrWordExists.
func (s *WordStore) Insert(ctx context.Context, learnerID string, words []domain.WordRecord) error {
	if len(words) == 0 {
		return nil
	}
	for i := range words {
		if err := words[i].Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		seq, err := s.db.nextSeq(ctx, tx, "words", learnerID)
		if err != nil {
			return err
		}
		now := s.now().UnixMilli()
		for i, w := range words {
			_, err := s.db.exec(ctx, tx, `INSERT INTO words (learner_id, seq, updated_at, `+wordColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				append([]any{learnerID, seq + int64(i), now}, wordArgs(w)...)...)
			if err != nil {
				err = MapError(err)
				if store.IsDuplicateError(err) {
					return fmt.Errorf("%w: %s", store.ErrWordExists, w.ID)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to insert words",
			slog.String("learner_id", learnerID),
			slog.Int("count", len(words)),
			slog.String("error", err.Error()))
		return store.NewStoreError("word", "insert", "insert failed", err)
	}
	return nil
}

// Update overwrites one existing word.
func (s *WordStore) Update(ctx context.Context, learnerID string, w domain.WordRecord) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	res, err := s.db.exec(ctx, s.db, `UPDATE words SET word = ?, meaning = ?, example = ?, language = ?,
			status = ?, interval_days = ?, repetition = ?, next_review_at = ?, last_review_at = ?,
			strength_score = ?, mistake_count = ?, total_attempts = ?, avg_response_ms = ?, updated_at = ?
		WHERE learner_id = ? AND id = ?`,
		append(wordArgs(w)[1:], s.now().UnixMilli(), learnerID, w.ID)...)
	if err != nil {
		return store.NewStoreError("word", "update", "update failed", MapError(err))
	}
	if err := checkRowsAffected(res, store.ErrWordNotFound); err != nil {
		return store.NewStoreError("word", "update", w.ID, err)
	}
	return nil
}

// UpsertBatch inserts or updates words in one transaction. A stored word
// whose last review is newer than the incoming one is left untouched, so a
// delayed retry cannot roll back a later answer.
func (s *WordStore) UpsertBatch(ctx context.Context, learnerID string, words []domain.WordRecord) error {
	if len(words) == 0 {
		return nil
	}
	for i := range words {
		if err := words[i].Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		seq, err := s.db.nextSeq(ctx, tx, "words", learnerID)
		if err != nil {
			return err
		}
		now := s.now().UnixMilli()
		for i, w := range words {
			_, err := s.db.exec(ctx, tx, `INSERT INTO words (learner_id, seq, updated_at, `+wordColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (learner_id, id) DO UPDATE SET
					word = excluded.word,
					meaning = excluded.meaning,
					example = excluded.example,
					language = excluded.language,
					status = excluded.status,
					interval_days = excluded.interval_days,
					repetition = excluded.repetition,
					next_review_at = excluded.next_review_at,
					last_review_at = excluded.last_review_at,
					strength_score = excluded.strength_score,
					mistake_count = excluded.mistake_count,
					total_attempts = excluded.total_attempts,
					avg_response_ms = excluded.avg_response_ms,
					updated_at = excluded.updated_at
				WHERE words.last_review_at IS NULL
					OR (excluded.last_review_at IS NOT NULL AND words.last_review_at <= excluded.last_review_at)`,
				append([]any{learnerID, seq + int64(i), now}, wordArgs(w)...)...)
			if err != nil {
				return MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to upsert words",
			slog.String("learner_id", learnerID),
			slog.Int("count", len(words)),
			slog.String("error", err.Error()))
		return store.NewStoreError("word", "upsert", "upsert failed", err)
	}
	return nil
}

// nextSeq returns the first free sequence number for the learner's rows.
func (db *DB) nextSeq(ctx context.Context, q store.DBTX, table, learnerID string) (int64, error) {
	var maxSeq sql.NullInt64
	err := db.queryRow(ctx, q, `SELECT MAX(seq) FROM `+table+` WHERE learner_id = ?`, learnerID).Scan(&maxSeq)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, MapError(err)
	}
	return maxSeq.Int64 + 1, nil
}

func wordArgs(w domain.WordRecord) []any {
	lang := w.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	return []any{
		w.ID, w.Word, w.Meaning, w.Example, lang, string(w.Status), w.Interval, w.Repetition,
		toMillis(w.NextReviewDate), nullMillis(w.LastReviewDate),
		w.StrengthScore, w.MistakeCount, w.TotalAttempts, w.AvgResponseTime,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWord(row scanner) (domain.WordRecord, error) {
	var (
		w      domain.WordRecord
		status string
		next   int64
		last   sql.NullInt64
	)
	if err := row.Scan(&w.ID, &w.Word, &w.Meaning, &w.Example, &w.Language, &status,
		&w.Interval, &w.Repetition, &next, &last,
		&w.StrengthScore, &w.MistakeCount, &w.TotalAttempts, &w.AvgResponseTime); err != nil {
		return domain.WordRecord{}, err
	}
	w.Status = domain.WordStatus(status)
	w.NextReviewDate = fromMillis(next)
	w.LastReviewDate = fromNullMillis(last)
	return w, nil
}
