package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStore_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	words := NewWordStore(db, quietLogger())
	tasks := NewTaskStore(db, quietLogger())

	clock := baseTime
	tasks.now = func() time.Time { return clock }

	pt, err := task.NewPersistWordsTask("learner-1",
		[]domain.WordRecord{reviewedWord("w1", "ephemeral", baseTime)}, words)
	require.NoError(t, err)
	require.NoError(t, tasks.SaveTask(ctx, pt))

	pending, err := tasks.ListTasks(ctx, task.TaskStatusPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pt.ID(), pending[0].ID)
	assert.Equal(t, task.TaskTypePersistWords, pending[0].Type)
	assert.JSONEq(t, string(pt.Payload()), string(pending[0].Payload))
	assert.Equal(t, 0, pending[0].Attempts)
	assert.True(t, pending[0].CreatedAt.Equal(baseTime))

	clock = clock.Add(time.Minute)
	require.NoError(t, tasks.UpdateTaskStatus(ctx, pt.ID(), task.TaskStatusProcessing, ""))
	require.NoError(t, tasks.UpdateTaskStatus(ctx, pt.ID(), task.TaskStatusFailed, "connection reset"))
	require.NoError(t, tasks.UpdateTaskStatus(ctx, pt.ID(), task.TaskStatusProcessing, ""))

	processing, err := tasks.ListTasks(ctx, task.TaskStatusProcessing, 0)
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, 2, processing[0].Attempts)
	assert.Empty(t, processing[0].LastError)

	// Only tasks untouched for at least olderThan count as stuck.
	stuck, err := tasks.ListTasks(ctx, task.TaskStatusProcessing, 10*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, stuck)

	clock = clock.Add(10 * time.Minute)
	stuck, err = tasks.ListTasks(ctx, task.TaskStatusProcessing, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, stuck, 1)

	// A stored record rebuilds into a runnable task.
	rebuilt, err := task.PersistWordsBuilder(words)(stuck[0])
	require.NoError(t, err)
	require.NoError(t, rebuilt.Execute(ctx))

	got, err := words.FetchAll(ctx, "learner-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "w1", got[0].ID)
}

func TestTaskStore_UpdateUnknownTaskIsNoop(t *testing.T) {
	t.Parallel()
	tasks := NewTaskStore(newTestDB(t), quietLogger())

	err := tasks.UpdateTaskStatus(context.Background(), uuid.New(), task.TaskStatusCompleted, "")
	assert.NoError(t, err)
}

func TestTaskStore_SaveTwiceResets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	tasks := NewTaskStore(db, quietLogger())

	pt, err := task.NewPersistWordsTask("learner-1",
		[]domain.WordRecord{newWord("w1", "ephemeral")}, NewWordStore(db, quietLogger()))
	require.NoError(t, err)

	require.NoError(t, tasks.SaveTask(ctx, pt))
	require.NoError(t, tasks.UpdateTaskStatus(ctx, pt.ID(), task.TaskStatusProcessing, ""))
	require.NoError(t, tasks.SaveTask(ctx, pt))

	pending, err := tasks.ListTasks(ctx, task.TaskStatusPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 0, pending[0].Attempts)
}
