package events

import (
	"context"
	"log/slog"
)

// ActivityHandler writes learner activity events to the log.
type ActivityHandler struct {
	logger *slog.Logger
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(logger *slog.Logger) *ActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityHandler{logger: logger.With("component", "activity")}
}

// HandleEvent logs words.imported and story.completed events.
func (h *ActivityHandler) HandleEvent(ctx context.Context, event *Event) error {
	switch event.Type {
	case TypeWordsImported:
		var p WordsImported
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		h.logger.InfoContext(ctx, "words imported",
			"learner_id", p.LearnerID,
			"count", p.Count,
			"skipped", p.Skipped,
			"source", p.Source)
	case TypeStoryCompleted:
		var p StoryCompleted
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		h.logger.InfoContext(ctx, "story completed",
			"learner_id", p.LearnerID,
			"story_id", p.StoryID)
	}
	return nil
}

var _ EventHandler = (*ActivityHandler)(nil)
