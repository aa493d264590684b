package store

import (
	"context"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// WordStore persists a learner's vocabulary.
type WordStore interface {
	// FetchAll returns every word of the learner in insertion order.
	FetchAll(ctx context.Context, learnerID string) ([]domain.WordRecord, error)

	// Insert adds new words. Words are validated first; an id that already
	// exists returns ErrWordExists and nothing is inserted.
	Insert(ctx context.Context, learnerID string, words []domain.WordRecord) error

	// Update overwrites a single word. Returns ErrWordNotFound when the id
	// is unknown for the learner.
	Update(ctx context.Context, learnerID string, word domain.WordRecord) error

	// UpsertBatch writes the SRS state of many words at once. A stored word
	// reviewed more recently than the incoming copy is left untouched, so a
	// delayed retry never rolls a word back.
	UpsertBatch(ctx context.Context, learnerID string, words []domain.WordRecord) error
}
