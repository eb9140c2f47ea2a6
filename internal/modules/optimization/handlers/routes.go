package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all optimization routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/optimization", func(r chi.Router) {
		r.Get("/engines", h.HandleGetEngines) // Available engines + defaults
		r.Post("/run", h.HandleRun)           // Execute an optimization
		r.Get("/runs", h.HandleListRuns)      // Recent persisted runs
		r.Get("/runs/{id}", h.HandleGetRun)   // One persisted run
	})
}
