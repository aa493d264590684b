package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabflow/internal/domain"
)

// ErrEmptyPayload is returned when a persist task carries no words.
var ErrEmptyPayload = errors.New("persist task has no words")

// WordUpserter is the part of the word store a PersistWordsTask needs.
type WordUpserter interface {
	UpsertBatch(ctx context.Context, learnerID string, words []domain.WordRecord) error
}

type persistWordsPayload struct {
	LearnerID string              `json:"learner_id"`
	Words     []domain.WordRecord `json:"words"`
}

// PersistWordsTask writes a batch of updated words for one learner.
type PersistWordsTask struct {
	id      uuid.UUID
	payload persistWordsPayload
	raw     []byte
	store   WordUpserter
}

// NewPersistWordsTask creates a task that upserts words for learnerID.
func NewPersistWordsTask(learnerID string, words []domain.WordRecord, store WordUpserter) (*PersistWordsTask, error) {
	if store == nil {
		return nil, errors.New("word store cannot be nil")
	}
	if len(words) == 0 {
		return nil, ErrEmptyPayload
	}
	p := persistWordsPayload{LearnerID: learnerID, Words: words}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode persist payload: %w", err)
	}
	return &PersistWordsTask{id: uuid.New(), payload: p, raw: raw, store: store}, nil
}

// PersistWordsBuilder returns a Builder that restores PersistWordsTasks
// from stored records.
func PersistWordsBuilder(store WordUpserter) Builder {
	return func(rec Record) (Task, error) {
		var p persistWordsPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode persist payload for task %s: %w", rec.ID, err)
		}
		if len(p.Words) == 0 {
			return nil, ErrEmptyPayload
		}
		return &PersistWordsTask{id: rec.ID, payload: p, raw: rec.Payload, store: store}, nil
	}
}

// ID implements Task.
func (t *PersistWordsTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *PersistWordsTask) Type() string { return TaskTypePersistWords }

// Payload implements Task.
func (t *PersistWordsTask) Payload() []byte { return t.raw }

// LearnerID returns the learner whose words are written.
func (t *PersistWordsTask) LearnerID() string { return t.payload.LearnerID }

// Words returns the words the task writes.
func (t *PersistWordsTask) Words() []domain.WordRecord { return t.payload.Words }

// Execute implements Task.
func (t *PersistWordsTask) Execute(ctx context.Context) error {
	if err := t.store.UpsertBatch(ctx, t.payload.LearnerID, t.payload.Words); err != nil {
		return fmt.Errorf("persist %d words: %w", len(t.payload.Words), err)
	}
	return nil
}

var _ Task = (*PersistWordsTask)(nil)
