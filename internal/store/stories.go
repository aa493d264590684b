package store

import (
	"context"

	"github.com/phrazzld/vocabflow/internal/domain"
)

// StoryStore persists stories imported by a learner. Built-in stories are
// not stored.
type StoryStore interface {
	// FetchAll returns the learner's stories, oldest first.
	FetchAll(ctx context.Context, learnerID string) ([]domain.Story, error)

	// Insert stores a new story.
	Insert(ctx context.Context, learnerID string, story domain.Story) error
}
