package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabflow/internal/domain"
)

// Event types.
const (
	TypeWordsUpdated   = "words.updated"
	TypeWordsImported  = "words.imported"
	TypeStoryCompleted = "story.completed"
)

// Event is a fact about a learner's data, with a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// NewEvent creates an event of the given type with payload encoded as JSON.
func NewEvent(eventType string, payload any) (*Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   b,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WordsUpdated carries words whose SRS state changed and still has to be
// persisted.
type WordsUpdated struct {
	LearnerID string              `json:"learner_id"`
	Words     []domain.WordRecord `json:"words"`
}

// WordsImported records that new words were added to a library.
type WordsImported struct {
	LearnerID string `json:"learner_id"`
	Count     int    `json:"count"`
	Skipped   int    `json:"skipped"`
	Source    string `json:"source"`
}

// StoryCompleted records that a learner finished a story.
type StoryCompleted struct {
	LearnerID string `json:"learner_id"`
	StoryID   string `json:"story_id"`
}

// EventHandler processes events. Handlers ignore types they do not know.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter publishes events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
