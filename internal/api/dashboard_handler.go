package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/vocabflow/internal/api/shared"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
)

// GetDashboard handles GET /dashboard.
func (h *LearningHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dashboard")
		return
	}
	if dashboard.Degraded {
		log.Warn("serving degraded dashboard")
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dashboard)
}

// GetFocusWords handles GET /focus-words.
func (h *LearningHandler) GetFocusWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	words, err := h.service.FocusWords(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load focus words")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, WordsResponse{Words: nonNilWords(words)})
}

// PutSettings handles PUT /settings. With ?scope=today the settings apply
// until the end of the current day and are not stored; otherwise they
// become the learner's saved defaults.
func (h *LearningHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = scopeDefault
	}
	if scope != scopeDefault && scope != scopeToday {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid scope: invalid value")
		return
	}

	var settings domain.DailySettings
	if !decodeAndValidate(w, r, &settings, log) {
		return
	}

	if scope == scopeToday {
		if err := h.service.ApplySettingsToday(r.Context(), learnerID, settings); err != nil {
			HandleAPIError(w, r, err, "Failed to apply settings")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, SettingsResponse{Scope: scope, Settings: settings})
		return
	}

	stats, err := h.service.SaveDefaultSettings(r.Context(), learnerID, settings)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save settings")
		return
	}
	log.Debug("saved default settings", slog.Int("daily_target", stats.Settings.DailyTarget))
	shared.RespondWithJSON(w, r, http.StatusOK, SettingsResponse{Scope: scope, Settings: stats.Settings})
}

func nonNilWords(words []domain.WordRecord) []domain.WordRecord {
	if words == nil {
		return []domain.WordRecord{}
	}
	return words
}
