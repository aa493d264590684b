package task

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	tasks []Task
	err   error
}

func (s *recordingSubmitter) Submit(_ context.Context, task Task) error {
	s.tasks = append(s.tasks, task)
	return s.err
}

func TestPersistenceEventHandler(t *testing.T) {
	t.Parallel()

	words := newFakeWordStore()
	batch := sampleWords(2)
	updated, err := events.NewEvent(events.TypeWordsUpdated, events.WordsUpdated{LearnerID: "learner-1", Words: batch})
	require.NoError(t, err)

	t.Run("submits a persist task", func(t *testing.T) {
		t.Parallel()
		submitter := &recordingSubmitter{}
		h := NewPersistenceEventHandler(words, submitter, discardLogger())

		require.NoError(t, h.HandleEvent(context.Background(), updated))
		require.Len(t, submitter.tasks, 1)
		task, ok := submitter.tasks[0].(*PersistWordsTask)
		require.True(t, ok)
		assert.Equal(t, "learner-1", task.LearnerID())
		assert.Len(t, task.Words(), 2)
	})

	t.Run("ignores other events and empty batches", func(t *testing.T) {
		t.Parallel()
		submitter := &recordingSubmitter{}
		h := NewPersistenceEventHandler(words, submitter, discardLogger())

		other, err := events.NewEvent(events.TypeStoryCompleted, events.StoryCompleted{LearnerID: "learner-1"})
		require.NoError(t, err)
		empty, err := events.NewEvent(events.TypeWordsUpdated, events.WordsUpdated{LearnerID: "learner-1"})
		require.NoError(t, err)

		require.NoError(t, h.HandleEvent(context.Background(), other))
		require.NoError(t, h.HandleEvent(context.Background(), empty))
		assert.Empty(t, submitter.tasks)
	})

	t.Run("full queue is deferred", func(t *testing.T) {
		t.Parallel()
		submitter := &recordingSubmitter{err: fmt.Errorf("failed to enqueue task: %w", ErrQueueFull)}
		h := NewPersistenceEventHandler(words, submitter, discardLogger())

		assert.NoError(t, h.HandleEvent(context.Background(), updated))
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()
		submitter := &recordingSubmitter{err: errors.New("failed to save task: disk full")}
		h := NewPersistenceEventHandler(words, submitter, discardLogger())

		assert.ErrorContains(t, h.HandleEvent(context.Background(), updated), "disk full")
	})
}
