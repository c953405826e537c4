package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"
)

// Routes returns the chi.Router with all REST API v1 routes mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	httpLogger := httplog.NewLogger("colorkeep", httplog.Options{
		Concise: true,
	})
	r.Use(httplog.RequestLogger(httpLogger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE endpoint for real-time settings and catalog updates
		r.Get("/events", h.SSEHandler)

		r.Route("/colors", h.colorRoutes)
		r.Route("/settings", h.settingsRoutes)
		r.Route("/deleted-colors", h.deletedColorRoutes)
	})

	return r
}

func (h *Handler) colorRoutes(r chi.Router) {
	r.Get("/", h.listColors)
	r.Get("/hue-range", h.findColorsByHueRange)
	r.Get("/{id}", h.findColor)
	r.Post("/", h.createColor)
	r.Put("/{id}/favorite", h.updateColorFavorite)
	r.Delete("/{id}", h.destroyColor)
}

func (h *Handler) settingsRoutes(r chi.Router) {
	r.Get("/", h.getSettings)
	r.Get("/theme", h.getTheme)
	r.Put("/name-query", h.setNameQuery)
	r.Put("/hue-range", h.setHueRange)
	r.Put("/show-favorites", h.setShowFavorites)
	r.Put("/theme", h.setTheme)
}

func (h *Handler) deletedColorRoutes(r chi.Router) {
	r.Get("/", h.getDeletedColors)
	r.Post("/restore", h.restoreDeletedColors)
	r.Delete("/", h.clearDeletedColors)
}
