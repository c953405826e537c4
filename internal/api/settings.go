package api

import (
	"net/http"

	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/models"
)

// --- Settings endpoints ---

// GET /api/v1/settings
func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.settings.GetSettings())
}

// GET /api/v1/settings/theme
func (h *Handler) getTheme(w http.ResponseWriter, r *http.Request) {
	respondOK(w, ThemeInput{Value: h.settings.GetTheme().String()})
}

// PUT /api/v1/settings/name-query
func (h *Handler) setNameQuery(w http.ResponseWriter, r *http.Request) {
	var input NameQueryInput
	if err := decodeBody(r, &input); err != nil {
		respondBadRequest(w, err)
		return
	}

	if err := h.settings.SetNameQuery(input.Value); err != nil {
		handleError(w, err)
		return
	}

	respondOK(w, input)
}

// PUT /api/v1/settings/hue-range
//
// The settings repository stores whatever it is given; normalizing an
// inverted range is this caller's job, so swapped bounds are fixed up here.
func (h *Handler) setHueRange(w http.ResponseWriter, r *http.Request) {
	var input HueRangeInput
	if err := decodeBody(r, &input); err != nil {
		respondBadRequest(w, err)
		return
	}

	if input.Min > input.Max {
		input.Min, input.Max = input.Max, input.Min
	}

	if err := h.settings.SetHueRange(input.Min, input.Max); err != nil {
		handleError(w, err)
		return
	}

	respondOK(w, input)
}

// PUT /api/v1/settings/show-favorites
func (h *Handler) setShowFavorites(w http.ResponseWriter, r *http.Request) {
	var input ShowFavoritesInput
	if err := decodeBody(r, &input); err != nil {
		respondBadRequest(w, err)
		return
	}

	if err := h.settings.SetShowFavorites(input.Value); err != nil {
		handleError(w, err)
		return
	}

	respondOK(w, input)
}

// PUT /api/v1/settings/theme
func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	var input ThemeInput
	if err := decodeBody(r, &input); err != nil {
		respondBadRequest(w, err)
		return
	}

	theme, err := models.ParseTheme(input.Value)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	if err := h.settings.SetTheme(theme); err != nil {
		handleError(w, err)
		return
	}

	respondOK(w, input)
}

// --- Deleted colors endpoints ---

// GET /api/v1/deleted-colors
func (h *Handler) getDeletedColors(w http.ResponseWriter, r *http.Request) {
	result := h.settings.GetDeletedColors()
	respondList(w, http.StatusOK, result, len(result))
}

// POST /api/v1/deleted-colors/restore
//
// Captures and clears the recovery list in one atomic step, then re-inserts
// the captured records into the catalog in their original deletion order.
// Restored records receive fresh catalog ids.
func (h *Handler) restoreDeletedColors(w http.ResponseWriter, r *http.Request) {
	restored, err := h.settings.RestoreDeletedColors()
	if err != nil {
		handleError(w, err)
		return
	}

	if len(restored) == 0 {
		respondList(w, http.StatusOK, []models.ColorRecord{}, 0)
		return
	}

	created, err := h.catalog.InsertAll(r.Context(), restored)
	if err != nil {
		// The list was already cleared; put the records back so they stay
		// recoverable instead of vanishing.
		for _, record := range restored {
			if addErr := h.settings.AddDeletedColor(record); addErr != nil {
				logger.Errorf("REST: re-queueing deleted color %q failed: %v", record.Name, addErr)
			}
		}
		handleError(w, err)
		return
	}

	respondList(w, http.StatusOK, created, len(created))
}

// DELETE /api/v1/deleted-colors
func (h *Handler) clearDeletedColors(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.ClearDeletedColors(); err != nil {
		handleError(w, err)
		return
	}

	respondNoContent(w)
}
