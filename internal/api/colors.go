package api

import (
	"net/http"

	"github.com/colorkeep/colorkeep/pkg/models"
)

// GET /api/v1/colors
func (h *Handler) listColors(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.ListAllOnce(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondList(w, http.StatusOK, result, len(result))
}

// GET /api/v1/colors/{id}
func (h *Handler) findColor(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	ret, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	if ret == nil {
		respondNotFound(w)
		return
	}

	respondOK(w, ret)
}

// GET /api/v1/colors/hue-range?min=...&max=...
func (h *Handler) findColorsByHueRange(w http.ResponseWriter, r *http.Request) {
	min, err := queryParamFloat(r, "min")
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	max, err := queryParamFloat(r, "max")
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	result, err := h.catalog.GetByHueRange(r.Context(), min, max)
	if err != nil {
		handleError(w, err)
		return
	}

	respondList(w, http.StatusOK, result, len(result))
}

// POST /api/v1/colors
func (h *Handler) createColor(w http.ResponseWriter, r *http.Request) {
	var input ColorCreateInput
	if err := decodeBody(r, &input); err != nil {
		respondBadRequest(w, err)
		return
	}

	packed, err := input.packedColor()
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	newColor := models.NewColorRecord(input.Name, packed)
	if err := h.catalog.Insert(r.Context(), &newColor); err != nil {
		handleError(w, err)
		return
	}

	respondCreated(w, newColor)
}

// PUT /api/v1/colors/{id}/favorite
func (h *Handler) updateColorFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	var input FavoriteUpdateInput
	if err := decodeBody(r, &input); err != nil {
		respondBadRequest(w, err)
		return
	}

	if err := h.catalog.UpdateFavorite(r.Context(), id, input.IsFavorite); err != nil {
		handleError(w, err)
		return
	}

	result, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	respondOK(w, result)
}

// DELETE /api/v1/colors/{id}
//
// A deleted color is appended to the recovery list before its row is
// destroyed, so every delete stays recoverable until the list is restored or
// cleared. If the recovery append fails, the row is left untouched.
func (h *Handler) destroyColor(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	record, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if record == nil {
		respondNotFound(w)
		return
	}

	if err := h.settings.AddDeletedColor(*record); err != nil {
		handleError(w, err)
		return
	}

	if err := h.catalog.DeleteByID(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	respondNoContent(w)
}
