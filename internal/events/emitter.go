package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/phrazzld/vocabflow/internal/redact"
)

type subscription struct {
	handler EventHandler
	types   []string // empty means every type
}

func (s subscription) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// InMemoryEventEmitter dispatches events synchronously, in registration
// order, to the handlers subscribed to their type.
type InMemoryEventEmitter struct {
	subs   []subscription
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no subscribers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to every event type.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.Subscribe(handler)
}

// Subscribe registers handler for the given event types, or for all types
// when none are given.
func (e *InMemoryEventEmitter) Subscribe(handler EventHandler, types ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, subscription{handler: handler, types: types})
	e.logger.Debug("event handler subscribed",
		"types", types,
		"handler_count", len(e.subs))
}

// EmitEvent delivers event to every matching handler. A failing handler
// does not stop delivery; the first error is returned.
//
// An unhandled words.updated event means word changes will not be stored,
// so it is logged at WARN. Other unhandled types are only traced.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	var matched []EventHandler
	for _, s := range e.subs {
		if s.wants(event.Type) {
			matched = append(matched, s.handler)
		}
	}
	e.mu.RUnlock()

	log := e.logger.With("event_id", event.ID, "event_type", event.Type)
	if len(matched) == 0 {
		if event.Type == TypeWordsUpdated {
			log.WarnContext(ctx, "no handler for word updates, changes are not persisted")
		} else {
			log.DebugContext(ctx, "no handler for event")
		}
		return nil
	}
	log.DebugContext(ctx, "emitting event", "handler_count", len(matched))

	var firstErr error
	for i, handler := range matched {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.ErrorContext(ctx, "event handler failed",
				"handler_index", i,
				"error", redact.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)
