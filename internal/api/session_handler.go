package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/service/learning"
)

// GetSession handles GET /sessions and returns the learner's current
// session, which is IDLE with no words when none is running.
func (h *LearningHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}
	session := h.service.CurrentSession(r.Context(), learnerID)
	session.Words = nonNilWords(session.Words)
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// StartSession handles POST /sessions. It responds 204 when no word is
// due and there is nothing new to learn.
func (h *LearningHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	session, err := h.service.StartSession(r.Context(), learnerID)
	if errors.Is(err, learning.ErrNothingToReview) {
		log.Debug("nothing to review")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	log.Debug("started session",
		slog.Int("words", len(session.Words)),
		slog.Int("review", session.Breakdown.ReviewCount),
		slog.Int("new", session.Breakdown.NewCount))
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// BeginQuiz handles POST /sessions/quiz.
func (h *LearningHandler) BeginQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	session, err := h.service.BeginQuiz(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to begin quiz")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// CompleteQuiz handles POST /sessions/complete.
func (h *LearningHandler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req SubmitAnswersRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	outcome, err := h.service.CompleteQuiz(r.Context(), learnerID, req.toResults())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record answers")
		return
	}

	log.Debug("completed quiz",
		slog.Int("correct", outcome.Correct),
		slog.Int("mistakes", outcome.Mistakes),
		slog.Int("learned", outcome.Learned))
	shared.RespondWithJSON(w, r, http.StatusOK, outcome)
}

// AbandonSession handles DELETE /sessions.
func (h *LearningHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	if err := h.service.AbandonSession(r.Context(), learnerID); err != nil {
		HandleAPIError(w, r, err, "Failed to end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
