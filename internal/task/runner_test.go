package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newRunner(t *testing.T, store TaskStore, words *fakeWordStore, mutate func(*TaskRunnerConfig)) *TaskRunner {
	t.Helper()
	registry := NewRegistry()
	registry.Register(TaskTypePersistWords, PersistWordsBuilder(words))

	cfg := DefaultTaskRunnerConfig()
	cfg.QueueSize = 10
	if mutate != nil {
		mutate(&cfg)
	}
	return NewTaskRunner(store, registry, cfg, discardLogger())
}

func statusOf(store *MemoryTaskStore, task Task) func() TaskStatus {
	return func() TaskStatus {
		rec, _ := store.Get(task.ID())
		return rec.Status
	}
}

func TestTaskRunnerPersistsWords(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	words := newFakeWordStore()
	runner := newRunner(t, store, words, nil)

	done := make(chan Task, 1)
	runner.SetCompletionHandler(func(task Task) { done <- task })
	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	batch := sampleWords(3)
	task, err := NewPersistWordsTask("learner-1", batch, words)
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), task))

	status := statusOf(store, task)
	require.Eventually(t, func() bool { return status() == TaskStatusCompleted }, waitFor, tick)
	assert.Len(t, words.savedFor("learner-1"), 3)

	select {
	case got := <-done:
		persisted, ok := got.(*PersistWordsTask)
		require.True(t, ok)
		assert.Equal(t, task.ID(), persisted.ID())
		assert.Equal(t, "learner-1", persisted.LearnerID())
		assert.Len(t, persisted.Words(), 3)
	case <-time.After(waitFor):
		t.Fatal("completion handler not called")
	}
}

func TestTaskRunnerDelayedPersistence(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	words := newFakeWordStore()
	words.gate = make(chan struct{})
	runner := newRunner(t, store, words, nil)
	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	task, err := NewPersistWordsTask("learner-1", sampleWords(2), words)
	require.NoError(t, err)

	// Submit returns before the write happens.
	require.NoError(t, runner.Submit(context.Background(), task))
	status := statusOf(store, task)
	require.Eventually(t, func() bool { return status() == TaskStatusProcessing }, waitFor, tick)
	assert.Empty(t, words.savedFor("learner-1"))

	close(words.gate)
	require.Eventually(t, func() bool { return status() == TaskStatusCompleted }, waitFor, tick)
	assert.Len(t, words.savedFor("learner-1"), 2)
}

func TestTaskRunnerRetriesFailedPersistence(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	words := newFakeWordStore()
	words.failN = 2
	runner := newRunner(t, store, words, nil)

	var failures atomic.Int32
	runner.SetErrorHandler(func(_ Task, _ error) { failures.Add(1) })
	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	task, err := NewPersistWordsTask("learner-1", sampleWords(1), words)
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), task))

	status := statusOf(store, task)
	for attempt := 1; attempt <= 2; attempt++ {
		require.Eventually(t, func() bool {
			rec, _ := store.Get(task.ID())
			return rec.Status == TaskStatusFailed && rec.Attempts == attempt
		}, waitFor, tick)

		n, err := runner.RetryFailed(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	require.Eventually(t, func() bool { return status() == TaskStatusCompleted }, waitFor, tick)
	rec, _ := store.Get(task.ID())
	assert.Equal(t, 3, rec.Attempts)
	assert.Equal(t, 3, words.callCount())
	assert.Len(t, words.savedFor("learner-1"), 1)
	assert.Eventually(t, func() bool { return failures.Load() == 2 }, waitFor, tick)
}

func TestTaskRunnerGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	words := newFakeWordStore()
	words.failAll = true
	runner := newRunner(t, store, words, func(c *TaskRunnerConfig) { c.MaxAttempts = 2 })
	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	task, err := NewPersistWordsTask("learner-1", sampleWords(1), words)
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), task))

	attempts := func() int { rec, _ := store.Get(task.ID()); return rec.Attempts }
	failed := func() bool { rec, _ := store.Get(task.ID()); return rec.Status == TaskStatusFailed }

	require.Eventually(t, func() bool { return failed() && attempts() == 1 }, waitFor, tick)
	n, err := runner.RetryFailed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.Eventually(t, func() bool { return failed() && attempts() == 2 }, waitFor, tick)
	n, err = runner.RetryFailed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	rec, _ := store.Get(task.ID())
	assert.Contains(t, rec.LastError, "database unavailable")
}

func TestTaskRunnerQueueFullDefersToRetry(t *testing.T) {
	t.Parallel()

	store := NewMemoryTaskStore()
	words := newFakeWordStore()
	words.gate = make(chan struct{})
	runner := newRunner(t, store, words, func(c *TaskRunnerConfig) {
		c.WorkerCount = 1
		c.QueueSize = 1
	})
	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	tasks := make([]*PersistWordsTask, 3)
	for i := range tasks {
		task, err := NewPersistWordsTask("learner-1", sampleWords(1), words)
		require.NoError(t, err)
		tasks[i] = task
	}

	// The only worker blocks on the first task, the second fills the queue.
	require.NoError(t, runner.Submit(context.Background(), tasks[0]))
	require.Eventually(t, func() bool { return statusOf(store, tasks[0])() == TaskStatusProcessing }, waitFor, tick)
	require.NoError(t, runner.Submit(context.Background(), tasks[1]))

	err := runner.Submit(context.Background(), tasks[2])
	require.ErrorIs(t, err, ErrQueueFull)

	rec, ok := store.Get(tasks[2].ID())
	require.True(t, ok)
	assert.Equal(t, TaskStatusFailed, rec.Status)
	assert.Zero(t, rec.Attempts)

	close(words.gate)
	require.Eventually(t, func() bool { return statusOf(store, tasks[1])() == TaskStatusCompleted }, waitFor, tick)

	n, err := runner.RetryFailed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Eventually(t, func() bool { return statusOf(store, tasks[2])() == TaskStatusCompleted }, waitFor, tick)
	assert.Len(t, words.savedFor("learner-1"), 3)
}

func TestTaskRunnerRecoversUnfinishedTasks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryTaskStore()
	words := newFakeWordStore()

	pending, err := NewPersistWordsTask("learner-1", sampleWords(1), words)
	require.NoError(t, err)
	interrupted, err := NewPersistWordsTask("learner-2", sampleWords(2), words)
	require.NoError(t, err)
	require.NoError(t, store.SaveTask(ctx, pending))
	require.NoError(t, store.SaveTask(ctx, interrupted))
	require.NoError(t, store.UpdateTaskStatus(ctx, interrupted.ID(), TaskStatusProcessing, ""))

	runner := newRunner(t, store, words, nil)
	require.NoError(t, runner.Start(ctx))
	defer runner.Stop()

	require.Eventually(t, func() bool {
		return statusOf(store, pending)() == TaskStatusCompleted &&
			statusOf(store, interrupted)() == TaskStatusCompleted
	}, waitFor, tick)
	assert.Len(t, words.savedFor("learner-1"), 1)
	assert.Len(t, words.savedFor("learner-2"), 2)
}

func TestTaskRunnerResetStuck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	store := NewMemoryTaskStore().WithClock(clock.Now)
	words := newFakeWordStore()
	runner := newRunner(t, store, words, func(c *TaskRunnerConfig) { c.StuckTaskAge = 10 * time.Minute })
	defer runner.Stop()

	task, err := NewPersistWordsTask("learner-1", sampleWords(1), words)
	require.NoError(t, err)
	require.NoError(t, store.SaveTask(ctx, task))
	require.NoError(t, store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""))

	n, err := runner.ResetStuck(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "not stuck yet")

	clock.Advance(11 * time.Minute)

	n, err = runner.ResetStuck(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, _ := store.Get(task.ID())
	assert.Equal(t, TaskStatusPending, rec.Status)
	assert.Equal(t, "reset after being stuck in processing state", rec.LastError)
}

func TestRegistryUnknownType(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Build(Record{Type: "mystery"})
	assert.ErrorIs(t, err, ErrUnknownTaskType)
}
