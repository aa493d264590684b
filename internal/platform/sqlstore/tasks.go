package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabflow/internal/task"
)

// TaskStore implements task.TaskStore so queued persistence work survives a
// restart.
type TaskStore struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskStore creates a TaskStore on db.
func NewTaskStore(db *DB, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
		now:    time.Now,
	}
}

var _ task.TaskStore = (*TaskStore)(nil)

// SaveTask persists a task in the pending state. Saving a known id resets it.
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	now := s.now().UnixMilli()
	_, err := s.db.exec(ctx, s.db, `INSERT INTO tasks
		(id, type, payload, status, attempts, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, '', ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			type = excluded.type,
			payload = excluded.payload,
			status = excluded.status,
			attempts = 0,
			error_message = '',
			updated_at = excluded.updated_at`,
		t.ID().String(), t.Type(), string(t.Payload()), string(task.TaskStatusPending), now, now)
	if err != nil {
		err = MapError(err)
		s.logger.ErrorContext(ctx, "failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task to database: %w", err)
	}
	return nil
}

// UpdateTaskStatus sets the status of a task. Unknown ids are a no-op.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	attempt := 0
	if status == task.TaskStatusProcessing {
		attempt = 1
	}
	res, err := s.db.exec(ctx, s.db, `UPDATE tasks
		SET status = ?, error_message = ?, attempts = attempts + ?, updated_at = ?
		WHERE id = ?`,
		string(status), errorMsg, attempt, s.now().UnixMilli(), taskID.String())
	if err != nil {
		err = MapError(err)
		s.logger.ErrorContext(ctx, "failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.WarnContext(ctx, "no task found with ID to update status",
			slog.String("task_id", taskID.String()))
	}
	return nil
}

// ListTasks returns tasks in status, oldest first.
func (s *TaskStore) ListTasks(ctx context.Context, status task.TaskStatus, olderThan time.Duration) ([]task.Record, error) {
	query := `SELECT id, type, payload, status, attempts, error_message, created_at, updated_at
		FROM tasks WHERE status = ?`
	args := []any{string(status)}
	if olderThan > 0 {
		query += ` AND updated_at <= ?`
		args = append(args, s.now().Add(-olderThan).UnixMilli())
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.query(ctx, s.db, query, args...)
	if err != nil {
		err = MapError(err)
		s.logger.ErrorContext(ctx, "failed to query tasks by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []task.Record
	for rows.Next() {
		var (
			rec              task.Record
			id, st, payload  string
			created, updated int64
		)
		if err := rows.Scan(&id, &rec.Type, &payload, &st, &rec.Attempts, &rec.LastError, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid task id %q: %w", id, err)
		}
		rec.Status = task.TaskStatus(st)
		rec.Payload = []byte(payload)
		rec.CreatedAt = fromMillis(created)
		rec.UpdatedAt = fromMillis(updated)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return records, nil
}
