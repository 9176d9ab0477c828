// Package handlers provides HTTP handlers for scoring and simulation
// operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stresswatch/internal/modules/assessment"
	"github.com/aristath/stresswatch/internal/modules/customers"
	"github.com/aristath/stresswatch/internal/modules/simulation"
)

// Handler handles scoring HTTP requests
type Handler struct {
	service      *assessment.Service
	customerRepo *customers.Repository
	runRepo      *assessment.Repository
	log          zerolog.Logger
}

// NewHandler creates a new scoring handler
func NewHandler(
	service *assessment.Service,
	customerRepo *customers.Repository,
	runRepo *assessment.Repository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:      service,
		customerRepo: customerRepo,
		runRepo:      runRepo,
		log:          log.With().Str("handler", "assessment").Logger(),
	}
}

// HandlePredict handles GET /api/predict - scores every customer.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ScoreAll(r.Context())
	if err != nil {
		if errors.Is(err, assessment.ErrModelUnavailable) {
			h.writeError(w, http.StatusServiceUnavailable, "Model not trained")
			return
		}
		h.log.Error().Err(err).Msg("Scoring failed")
		h.writeError(w, http.StatusInternalServerError, "Scoring failed")
		return
	}

	h.writeJSON(w, http.StatusOK, list)
}

type simulateRequest struct {
	Scenario  string  `json:"scenario"`
	Intensity float64 `json:"intensity"`
	Score     bool    `json:"score"` // when true, return assessments of the stressed records
}

// HandleSimulate handles POST /api/simulate - regenerates the customer set
// under a named shock scenario.
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Intensity < 0 {
		h.writeError(w, http.StatusBadRequest, "Intensity must be >= 0")
		return
	}

	scenario, err := simulation.ParseScenario(req.Scenario)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Score {
		list, err := h.service.ScoreScenario(r.Context(), scenario, req.Intensity)
		if err != nil {
			if errors.Is(err, assessment.ErrModelUnavailable) {
				h.writeError(w, http.StatusServiceUnavailable, "Model not trained")
				return
			}
			h.log.Error().Err(err).Msg("Scenario scoring failed")
			h.writeError(w, http.StatusInternalServerError, "Scenario scoring failed")
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"scenario":    string(scenario),
			"intensity":   req.Intensity,
			"assessments": list,
		})
		return
	}

	records, err := h.service.Simulate(scenario, req.Intensity)
	if err != nil {
		h.log.Error().Err(err).Msg("Simulation failed")
		h.writeError(w, http.StatusInternalServerError, "Simulation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenario":  string(scenario),
		"intensity": req.Intensity,
		"customers": records,
	})
}

// HandleRetrain handles POST /api/retrain - rebuilds the model from the
// current customer set.
func (h *Handler) HandleRetrain(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Train(); err != nil {
		h.log.Error().Err(err).Msg("Retrain failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "trained",
	})
}

// HandleListCustomers handles GET /api/customers
func (h *Handler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	records, err := h.customerRepo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list customers")
		h.writeError(w, http.StatusInternalServerError, "Failed to list customers")
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

// HandleGetCustomer handles GET /api/customers/{id}
func (h *Handler) HandleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.customerRepo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("customer_id", id).Msg("Failed to get customer")
		h.writeError(w, http.StatusInternalServerError, "Failed to get customer")
		return
	}
	if rec == nil {
		h.writeError(w, http.StatusNotFound, "Unknown customer")
		return
	}

	response := map[string]interface{}{"customer": rec}
	if v, ok := h.service.CachedFeatures(id); ok {
		response["features"] = v
	}
	if history, err := h.runRepo.History(id, 10); err == nil && len(history) > 0 {
		response["assessments"] = history
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleListRuns handles GET /api/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.runRepo.RecentRuns(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		h.writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	h.writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": message,
	})
}
