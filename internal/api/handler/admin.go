package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mcoot/spyword/internal/api/request"
	"github.com/mcoot/spyword/internal/api/response"
	"github.com/mcoot/spyword/internal/model"
)

// SettingsStore reads and replaces the game settings
type SettingsStore interface {
	Get() model.Settings
	Update(ctx context.Context, settings model.Settings) error
}

// WordStore reads and replaces the word list
type WordStore interface {
	Entries() []model.WordEntry
	Replace(ctx context.Context, entries []model.WordEntry) ([]model.WordEntry, error)
}

// AdminHandler handles the admin endpoints
type AdminHandler struct {
	settings SettingsStore
	words    WordStore
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(settings SettingsStore, words WordStore) *AdminHandler {
	return &AdminHandler{
		settings: settings,
		words:    words,
	}
}

// GetSettings handles GET /api/v1/admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SettingsFromModel(h.settings.Get()))
}

// UpdateSettings handles PUT /api/v1/admin/settings.
// Omitted fields keep their current value.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	settings := h.settings.Get()
	if req.MinPlayersToStart != nil {
		settings.MinPlayersToStart = *req.MinPlayersToStart
	}
	if req.ShowHintToRegulars != nil {
		settings.ShowHintToRegulars = *req.ShowHintToRegulars
	}

	if err := h.settings.Update(r.Context(), settings); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SettingsFromModel(h.settings.Get()))
}

// GetWords handles GET /api/v1/admin/words
func (h *AdminHandler) GetWords(w http.ResponseWriter, r *http.Request) {
	entries := h.words.Entries()
	response.JSON(w, http.StatusOK, response.Words{Count: len(entries), Words: entries})
}

// ReplaceWords handles PUT /api/v1/admin/words
func (h *AdminHandler) ReplaceWords(w http.ResponseWriter, r *http.Request) {
	var req request.ReplaceWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	entries, err := h.words.Replace(r.Context(), req.Words)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Words{Count: len(entries), Words: entries})
}
