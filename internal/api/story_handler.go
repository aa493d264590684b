package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
)

// ListStories handles GET /stories.
func (h *LearningHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	stories, err := h.service.Stories(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load stories")
		return
	}
	if stories == nil {
		stories = []domain.Story{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StoriesResponse{Stories: stories})
}

// GetNextStory handles GET /stories/next.
func (h *LearningHandler) GetNextStory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	rec, err := h.service.NextStory(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to recommend a story")
		return
	}
	rec.Matches = nonNilWords(rec.Matches)
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}

// ImportStory handles POST /stories. It responds 503 when no language
// model is configured.
func (h *LearningHandler) ImportStory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req TextRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	story, err := h.service.ImportStory(r.Context(), learnerID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import story")
		return
	}
	log.Debug("imported story", slog.String("story_id", story.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, story)
}

// CompleteStory handles POST /stories/{id}/complete.
func (h *LearningHandler) CompleteStory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	storyID, err := getPathParam(r, "id")
	if err != nil {
		log.Warn("story ID missing from path")
		HandleAPIError(w, r, err, "")
		return
	}

	stats, err := h.service.CompleteStory(r.Context(), learnerID, storyID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete story")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{Stats: stats})
}
