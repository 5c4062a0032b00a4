package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"vrp-search-service/internal/api/dto"
	"vrp-search-service/internal/config"
	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/ports"
	"vrp-search-service/internal/services"
)

var validate = validator.New()

// Solver is the part of services.Solver the HTTP layer needs.
type Solver interface {
	Solve(ctx context.Context, req services.SolveRequest) (domain.SolutionRecord, error)
}

type SolveHandler struct {
	Solver Solver
	// Defaults are the search settings used where a request is silent.
	Defaults config.SearchConfig
}

// Solve runs a multi-start local search on a stored instance and returns the
// persisted result.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.InstanceID = strings.TrimSpace(req.InstanceID)
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.Defaults
	if req.Starts != 0 {
		cfg.Starts = req.Starts
	}
	if req.Construction != "" {
		cfg.Construction = req.Construction
	}
	if req.PairPolicy != "" {
		cfg.PairPolicy = req.PairPolicy
	}
	if req.Penalties != nil {
		cfg.Penalties = config.PenaltyConfig{Capacity: req.Penalties.Capacity, TimeWarp: req.Penalties.TimeWarp}
	}

	rec, err := h.Solver.Solve(r.Context(), services.SolveRequest{
		InstanceID: req.InstanceID,
		Seed:       req.Seed,
		Config:     cfg,
	})
	if err != nil {
		writeServiceError(w, r, "solve", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.SolutionFromRecord(rec))
}

// SolutionHandler serves stored search results by run id.
type SolutionHandler struct {
	Store ports.SolutionStore
}

func (h *SolutionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	runID := strings.TrimSpace(r.PathValue("run_id"))
	if runID == "" {
		writeError(w, r, http.StatusBadRequest, "run id is required")
		return
	}

	rec, err := h.Store.Get(r.Context(), runID)
	if err != nil {
		writeServiceError(w, r, "get solution", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SolutionFromRecord(rec))
}
