package learning

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/story"
	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/phrazzld/vocabflow/internal/generation"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/redact"
)

// customStoryPrefix marks the ids of stories a learner imported.
const customStoryPrefix = "custom_"

// StoryRecommendation is the next story to read and the library words it
// practises.
type StoryRecommendation struct {
	Story *domain.Story `json:"story,omitempty"`
	// Matches are the learner's words that appear among the story's
	// target words, in target-word order.
	Matches []domain.WordRecord `json:"matches"`
	// AllCompleted is set when every story in the catalog has been read.
	AllCompleted bool `json:"allCompleted"`
}

// catalog returns the built-in stories followed by the learner's own. A
// failing story store leaves only the built-ins.
func (s *Service) catalog(ctx context.Context, learnerID string) []domain.Story {
	own, err := s.stories.FetchAll(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "failed to fetch stories, using built-ins only",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		own = nil
	}
	return story.Catalog(own)
}

// Stories returns the learner's story catalog.
func (s *Service) Stories(ctx context.Context, learnerID string) ([]domain.Story, error) {
	return s.catalog(ctx, learnerID), nil
}

// NextStory recommends the first story the learner has not completed.
func (s *Service) NextStory(ctx context.Context, learnerID string) (*StoryRecommendation, error) {
	today := domain.DayOf(s.now())
	snap, err := s.load(ctx, learnerID, today, loadAll)
	if err != nil {
		return nil, NewServiceError("next_story", "failed to load learner data", err)
	}

	next, ok := story.Recommend(snap.stats.CompletedStoryIDs, story.Catalog(snap.stories))
	if !ok {
		return &StoryRecommendation{Matches: []domain.WordRecord{}, AllCompleted: true}, nil
	}
	return &StoryRecommendation{
		Story:   &next,
		Matches: story.LibraryMatches(next, snap.words),
	}, nil
}

// ImportStory turns text into a custom story with the configured model and
// stores it. The story keeps text as its content.
func (s *Service) ImportStory(ctx context.Context, learnerID, text string) (*domain.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	gen, err := s.generator.GenerateStory(ctx, text)
	if err != nil {
		if !errors.Is(err, generation.ErrUnavailable) {
			log.ErrorContext(ctx, "story generation failed",
				slog.String("learner_id", learnerID),
				slog.Int("text_length", len(text)),
				slog.String("error", redact.Error(err)))
		}
		return nil, NewServiceError("import_story", "story generation failed", err)
	}

	st := domain.Story{
		ID:          customStoryPrefix + uuid.NewString(),
		Title:       gen.Title,
		Content:     text,
		TargetWords: gen.TargetWords,
		Questions:   gen.Questions,
		IsCustom:    true,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.stories.Insert(ctx, learnerID, st); err != nil {
		log.ErrorContext(ctx, "failed to store story",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("import_story", "failed to store story", err)
	}

	log.InfoContext(ctx, "story imported",
		slog.String("learner_id", learnerID),
		slog.String("story_id", st.ID),
		slog.Int("questions", len(st.Questions)))
	return &st, nil
}

// CompleteStory marks a story as read today. Completing a story twice keeps
// a single entry in the completed set but counts toward the weekly total
// again.
func (s *Service) CompleteStory(ctx context.Context, learnerID, storyID string) (domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, ok := story.Find(s.catalog(ctx, learnerID), storyID); !ok {
		return domain.UserStats{}, ErrStoryNotFound
	}

	today := domain.DayOf(s.now())
	stats, patch, err := s.loadStats(ctx, learnerID, today)
	if err != nil {
		log.ErrorContext(ctx, "failed to load stats",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return domain.UserStats{}, NewServiceError("complete_story", "failed to load stats", err)
	}
	patch.Merge(domain.AddCompletedStory(stats, storyID, today))

	saved, err := s.saveStats(ctx, learnerID, stats, patch)
	if err != nil {
		log.ErrorContext(ctx, "failed to save stats",
			slog.String("learner_id", learnerID),
			slog.String("error", redact.Error(err)))
		return domain.UserStats{}, NewServiceError("complete_story", "failed to save stats", err)
	}

	s.emitActivity(ctx, events.TypeStoryCompleted, events.StoryCompleted{
		LearnerID: learnerID,
		StoryID:   storyID,
	})
	return saved, nil
}
