// Package handlers provides HTTP handlers for portfolio optimization.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/swarmfolio/internal/modules/optimization"
	"github.com/aristath/swarmfolio/internal/modules/results"
)

// Handler handles optimization HTTP requests
type Handler struct {
	service *optimization.OptimizerService
	repo    *results.RunRepository
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(
	service *optimization.OptimizerService,
	repo *results.RunRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "optimization").Logger(),
	}
}

// HandleRun executes an optimization with the requested parameters and
// returns the per-engine best results. An empty body runs all engines with
// the configured defaults.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var params optimization.RunParams
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	records, err := h.service.Optimize(params)
	if err != nil {
		h.log.Error().Err(err).Msg("Optimization failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Non-finite results cannot be JSON-encoded; report them by engine
	// name instead of failing the whole response.
	finite := make([]results.Record, 0, len(records))
	var degenerate []string
	for _, rec := range records {
		if rec.Finite() {
			finite = append(finite, rec)
		} else {
			degenerate = append(degenerate, rec.Engine)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":    finite,
		"degenerate": degenerate,
	})
}

// HandleListRuns returns the most recent persisted runs.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(50)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []results.Record{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

// HandleGetRun returns one persisted run by id.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.repo.Get(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// HandleGetEngines lists the available engines and the default parameters.
func (h *Handler) HandleGetEngines(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"engines":  optimization.EngineNames,
		"defaults": h.service.Defaults(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
