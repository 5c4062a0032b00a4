package api

import (
	"net/http"

	"vrp-search-service/internal/api/handlers"
	"vrp-search-service/internal/config"
	"vrp-search-service/internal/platform/metrics"
	"vrp-search-service/internal/ports"
)

// Deps are the collaborators the HTTP API is built from.
type Deps struct {
	Problems ports.ProblemRepository
	Store    ports.SolutionStore
	Solver   handlers.Solver
	Defaults config.SearchConfig
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	instanceHandler := &handlers.InstanceHandler{Repo: deps.Problems}
	solveHandler := &handlers.SolveHandler{Solver: deps.Solver, Defaults: deps.Defaults}
	solutionHandler := &handlers.SolutionHandler{Store: deps.Store}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/instances", instanceHandler.List)
	mux.HandleFunc("/solve", solveHandler.Solve)
	mux.HandleFunc("/solutions/{run_id}", solutionHandler.Get)
	mux.Handle("/metrics", metrics.Handler())

	return requestIDMiddleware(loggingMiddleware(mux))
}
