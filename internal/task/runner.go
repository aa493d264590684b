package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// MaxAttempts caps how many times a failed task is retried
	MaxAttempts int

	// StuckTaskAge defines how long a task can be in processing state
	// before ResetStuck puts it back in the queue
	StuckTaskAge time.Duration

	// TaskTimeout bounds a single execution; zero means no timeout
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:  2,
		QueueSize:    100,
		MaxAttempts:  5,
		StuckTaskAge: 10 * time.Minute,
		TaskTimeout:  30 * time.Second,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store       TaskStore
	registry    *Registry
	queue       *TaskQueue
	ctx         context.Context
	cancelFunc  context.CancelFunc
	wg          sync.WaitGroup
	config      TaskRunnerConfig
	logger      *slog.Logger
	errHandler  func(task Task, err error)
	doneHandler func(task Task)
	stopOnce    sync.Once
}

// NewTaskRunner creates a new TaskRunner. The registry is used to rebuild
// tasks loaded from the store during recovery and retries.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if store == nil {
		panic("task store cannot be nil") // ALLOW-PANIC
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	logger = logger.With("component", "task_runner")

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:       store,
		registry:    registry,
		queue:       NewTaskQueue(config.QueueSize, logger),
		ctx:         ctx,
		cancelFunc:  cancel,
		config:      config,
		logger:      logger,
		errHandler:  func(task Task, err error) {},
		doneHandler: func(task Task) {},
	}
}

// SetErrorHandler sets a function called after a task fails
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// SetCompletionHandler sets a function called after a task completes. Call
// it before Start.
func (r *TaskRunner) SetCompletionHandler(handler func(task Task)) {
	r.doneHandler = handler
}

// Submit saves the task and adds it to the queue. When the queue is full the
// task is kept in the store as failed, so the next RetryFailed picks it up,
// and the returned error wraps ErrQueueFull.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unqueued task as failed",
				"task_id", task.ID(),
				"error", updateErr)
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks and starts the workers
func (r *TaskRunner) Start(ctx context.Context) error {
	if err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return nil
}

// Stop stops the workers and waits for in-flight tasks to finish. Tasks
// still queued stay pending in the store and are recovered on next Start.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.queue.Close()
	})
}

// Recover requeues tasks left pending or processing by a previous run
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.store.ListTasks(ctx, TaskStatusPending, 0)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}
	processing, err := r.store.ListTasks(ctx, TaskStatusProcessing, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range append(pending, processing...) {
		r.requeue(ctx, rec, "reset after recovery")
	}
	return nil
}

// RetryFailed requeues failed tasks that have attempts left and returns how
// many were requeued
func (r *TaskRunner) RetryFailed(ctx context.Context) (int, error) {
	failed, err := r.store.ListTasks(ctx, TaskStatusFailed, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed tasks: %w", err)
	}

	requeued := 0
	for _, rec := range failed {
		if r.config.MaxAttempts > 0 && rec.Attempts >= r.config.MaxAttempts {
			r.logger.Debug("task out of attempts",
				"task_id", rec.ID,
				"attempts", rec.Attempts,
				"last_error", rec.LastError)
			continue
		}
		if r.requeue(ctx, rec, "") {
			requeued++
		}
	}
	if requeued > 0 {
		r.logger.Info("requeued failed tasks", "count", requeued)
	}
	return requeued, nil
}

// ResetStuck requeues tasks that have been processing for longer than
// StuckTaskAge and returns how many were requeued
func (r *TaskRunner) ResetStuck(ctx context.Context) (int, error) {
	stuck, err := r.store.ListTasks(ctx, TaskStatusProcessing, r.config.StuckTaskAge)
	if err != nil {
		return 0, fmt.Errorf("failed to check for stuck tasks: %w", err)
	}

	requeued := 0
	for _, rec := range stuck {
		if r.requeue(ctx, rec, "reset after being stuck in processing state") {
			requeued++
		}
	}
	if requeued > 0 {
		r.logger.Info("requeued stuck tasks", "count", requeued)
	}
	return requeued, nil
}

// requeue rebuilds rec, marks it pending and puts it back in the queue.
func (r *TaskRunner) requeue(ctx context.Context, rec Record, note string) bool {
	log := r.logger.With("task_id", rec.ID, "task_type", rec.Type)

	task, err := r.registry.Build(rec)
	if err != nil {
		log.Error("failed to rebuild task", "error", err)
		return false
	}
	if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, note); err != nil {
		log.Error("failed to reset task status", "error", err)
		return false
	}
	if err := r.queue.Enqueue(task); err != nil {
		log.Error("failed to requeue task", "error", err)
		if errors.Is(err, ErrQueueFull) {
			_ = r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error())
		}
		return false
	}
	return true
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.queue.GetChannel():
			if !ok {
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := context.Background()
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		defer cancel()
	}
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Debug("processing task")

	if err := task.Execute(ctx); err != nil {
		logger.Warn("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
		return
	}

	logger.Debug("task completed")
	if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
		logger.Error("failed to update task status to completed", "error", updateErr)
	}
	r.doneHandler(task)
}
