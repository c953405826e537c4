package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/colorkeep/colorkeep/pkg/catalog"
	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/settings"
)

// Handler is the base handler for all REST API endpoints.
type Handler struct {
	catalog  *catalog.Service
	settings *settings.Repository
	events   *EventBroker
}

// NewHandler creates the REST handler with the given dependencies.
func NewHandler(catalogSvc *catalog.Service, settingsRepo *settings.Repository, events *EventBroker) *Handler {
	return &Handler{
		catalog:  catalogSvc,
		settings: settingsRepo,
		events:   events,
	}
}

// --- Response helpers ---

// respondJSON writes a JSON response with the given status code and data.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Errorf("REST: error encoding response: %v", err)
		}
	}
}

// respondData wraps data in a standard envelope and writes JSON response.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, map[string]interface{}{
		"data": data,
	})
}

// respondList writes a standard list response with data and count.
func respondList(w http.ResponseWriter, status int, data interface{}, count int) {
	respondJSON(w, status, map[string]interface{}{
		"data":  data,
		"count": count,
	})
}

// respondNoContent writes a 204 No Content response.
func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondOK writes a 200 OK with data wrapped in envelope.
func respondOK(w http.ResponseWriter, data interface{}) {
	respondData(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created with data wrapped in envelope.
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondData(w, http.StatusCreated, data)
}

// --- Error helpers ---

type restError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondError(w http.ResponseWriter, status int, message string, code string) {
	respondJSON(w, status, restError{
		Error: message,
		Code:  code,
	})
}

func respondBadRequest(w http.ResponseWriter, err error) {
	respondError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
}

func respondNotFound(w http.ResponseWriter) {
	respondError(w, http.StatusNotFound, "not found", "NOT_FOUND")
}

func respondInternalError(w http.ResponseWriter, err error) {
	logger.Errorf("REST: internal error: %v", err)
	respondError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// handleError determines the appropriate HTTP error response for a given error.
func handleError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	respondInternalError(w, err)
}

// --- Request helpers ---

// decodeBody decodes the JSON request body into the given target.
func decodeBody(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// urlParamInt extracts an integer URL parameter.
func urlParamInt(r *http.Request, name string) (int, error) {
	param := chi.URLParam(r, name)
	if param == "" {
		return 0, fmt.Errorf("missing URL parameter: %s", name)
	}
	return strconv.Atoi(param)
}

// queryParamFloat extracts a float query string parameter.
func queryParamFloat(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, fmt.Errorf("missing query parameter: %s", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid query parameter %s: %w", name, err)
	}
	return v, nil
}
