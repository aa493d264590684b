package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypePersistWords writes updated word records to the word store.
	TaskTypePersistWords = "persist_words"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data; a Registry rebuilds the task from it
	Payload() []byte

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// Record is the stored state of a task.
type Record struct {
	ID        uuid.UUID
	Type      string
	Payload   []byte
	Status    TaskStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// TaskStore defines the interface for persisting task state
type TaskStore interface {
	// SaveTask stores a new task in the pending state
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus sets the status of a task. Moving a task to
	// processing counts one attempt. Unknown ids are a no-op.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// ListTasks returns tasks in the given status, oldest first. If
	// olderThan is non-zero, only tasks whose last update is at least that
	// old are returned.
	ListTasks(ctx context.Context, status TaskStatus, olderThan time.Duration) ([]Record, error)
}
