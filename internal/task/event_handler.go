package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocabflow/internal/events"
)

// TaskSubmitter accepts tasks for background execution. *TaskRunner
// implements it.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// PersistenceEventHandler turns words.updated events into PersistWordsTasks.
type PersistenceEventHandler struct {
	store  WordUpserter
	runner TaskSubmitter
	logger *slog.Logger
}

// NewPersistenceEventHandler creates a handler that submits persistence
// tasks writing to store.
func NewPersistenceEventHandler(store WordUpserter, runner TaskSubmitter, logger *slog.Logger) *PersistenceEventHandler {
	if store == nil || runner == nil {
		panic("store and runner cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistenceEventHandler{
		store:  store,
		runner: runner,
		logger: logger.With("component", "persistence_event_handler"),
	}
}

// HandleEvent implements events.EventHandler. A full queue is not an error:
// the task is already stored and the retry job will pick it up.
func (h *PersistenceEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeWordsUpdated {
		return nil
	}

	var payload events.WordsUpdated
	if err := event.UnmarshalPayload(&payload); err != nil {
		return err
	}
	if len(payload.Words) == 0 {
		return nil
	}

	task, err := NewPersistWordsTask(payload.LearnerID, payload.Words, h.store)
	if err != nil {
		return fmt.Errorf("failed to create persist task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		if errors.Is(err, ErrQueueFull) || errors.Is(err, ErrQueueClosed) {
			h.logger.WarnContext(ctx, "persist task deferred to retry",
				"task_id", task.ID(),
				"learner_id", payload.LearnerID,
				"error", err)
			return nil
		}
		return fmt.Errorf("failed to submit persist task: %w", err)
	}

	h.logger.DebugContext(ctx, "persist task submitted",
		"task_id", task.ID(),
		"learner_id", payload.LearnerID,
		"word_count", len(payload.Words),
		"event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*PersistenceEventHandler)(nil)
