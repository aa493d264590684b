package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/domain/progress"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/service/learning"
)

// ListWords handles GET /words. Query parameters: q (search text), status
// (NEW, LEARNING, LEARNED, MISTAKE) and filter (ALL, PRACTICED,
// NOT_PRACTICED).
func (h *LearningHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := progress.LibraryFilter{
		Query:    strings.TrimSpace(query.Get("q")),
		Status:   domain.WordStatus(strings.ToUpper(query.Get("status"))),
		Practice: progress.PracticeFilter(strings.ToUpper(query.Get("filter"))),
	}
	if filter.Practice == "" {
		filter.Practice = progress.FilterAll
	}

	library, err := h.service.Library(r.Context(), learnerID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load words")
		return
	}
	library.Words = nonNilWords(library.Words)
	shared.RespondWithJSON(w, r, http.StatusOK, library)
}

// ImportWords handles POST /words.
func (h *LearningHandler) ImportWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req ImportWordsRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.service.ImportWords(r.Context(), learnerID, req.toEntries(), learning.SourceManual)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import words")
		return
	}
	h.respondImport(w, r, log, result)
}

// ExtractWords handles POST /words/extract. It responds 503 when no
// language model is configured.
func (h *LearningHandler) ExtractWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req TextRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.service.ImportFromText(r.Context(), learnerID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to extract words")
		return
	}
	h.respondImport(w, r, log, result)
}

func (h *LearningHandler) respondImport(w http.ResponseWriter, r *http.Request, log *slog.Logger, result *learning.ImportResult) {
	log.Debug("imported words",
		slog.Int("added", len(result.Words)),
		slog.Int("skipped", result.Skipped))
	result.Words = nonNilWords(result.Words)
	status := http.StatusCreated
	if len(result.Words) == 0 {
		status = http.StatusOK
	}
	shared.RespondWithJSON(w, r, status, result)
}

// GetPracticeWords handles GET /words/practice.
func (h *LearningHandler) GetPracticeWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	words, err := h.service.PracticeWords(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load practice words")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WordsResponse{Words: nonNilWords(words)})
}

// SubmitPractice handles POST /words/practice.
func (h *LearningHandler) SubmitPractice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req SubmitAnswersRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	outcome, err := h.service.PracticeAnswers(r.Context(), learnerID, req.toResults())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record practice")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, outcome)
}
