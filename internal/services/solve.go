package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"vrp-search-service/internal/config"
	"vrp-search-service/internal/cost"
	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/localsearch"
	"vrp-search-service/internal/platform/metrics"
	"vrp-search-service/internal/platform/obs"
	"vrp-search-service/internal/ports"
)

type startResult struct {
	index int
	sol   *domain.Solution
	cost  int
	stats localsearch.Stats
	err   error
}

// Outcome is the best solution found over all starts of one solve.
type Outcome struct {
	Solution      *domain.Solution
	PenalisedCost int
	BestStart     int
	NumMoves      int
}

// InitialSolution constructs a starting point for one start.
func InitialSolution(data *domain.ProblemData, construction string, rng *rand.Rand) (*domain.Solution, error) {
	switch construction {
	case "", "random":
		return domain.RandomSolution(data, rng)
	case "nearest":
		return NearestNeighbourSolution(data)
	}
	return nil, fmt.Errorf("initial solution: unknown construction %q", construction)
}

// SolveData runs cfg.Starts independent local searches on data, at most
// cfg.Parallelism at a time, and keeps the one with the lowest penalised
// cost. Start i uses seed+i, so the outcome does not depend on scheduling.
func SolveData(ctx context.Context, data *domain.ProblemData, seed int64, cfg config.SearchConfig, observer localsearch.Observer) (out Outcome, err error) {
	defer obs.Time(ctx, "solve.SolveData")(&err)

	if err := cfg.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("solve: %w", err)
	}
	ce, err := cost.NewEvaluator(cfg.Penalties.Capacity, cfg.Penalties.TimeWarp)
	if err != nil {
		return Outcome{}, fmt.Errorf("solve: %w", err)
	}
	nb, err := localsearch.ComputeNeighbours(data, NeighbourhoodParams(cfg))
	if err != nil {
		return Outcome{}, fmt.Errorf("solve: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, cfg.Parallelism)
	resultsCh := make(chan startResult, cfg.Starts)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Starts; i++ {
		wg.Add(1)
		go func(i int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				resultsCh <- startResult{index: i, err: err}
				return
			}

			res, err := runStart(data, nb, cfg, ce, seed+int64(i), observer)
			if err != nil {
				resultsCh <- startResult{index: i, err: fmt.Errorf("solve: start %d: %w", i, err)}
				cancel()
				return
			}
			res.index = i
			resultsCh <- res
		}(i)
	}

	wg.Wait()
	close(resultsCh)

	var firstErr error
	best := startResult{index: -1}
	moves := 0
	for res := range resultsCh {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		moves += res.stats.NumMoves
		if best.index < 0 || res.cost < best.cost || (res.cost == best.cost && res.index < best.index) {
			best = res
		}
	}
	if firstErr != nil {
		return Outcome{}, firstErr
	}

	return Outcome{
		Solution:      best.sol,
		PenalisedCost: best.cost,
		BestStart:     best.index,
		NumMoves:      moves,
	}, nil
}

func runStart(data *domain.ProblemData, nb localsearch.Neighbours, cfg config.SearchConfig, ce *cost.Evaluator, seed int64, observer localsearch.Observer) (startResult, error) {
	rng := rand.New(rand.NewSource(seed))

	ls, err := BuildLocalSearch(data, nb, cfg, observer)
	if err != nil {
		return startResult{}, err
	}
	initial, err := InitialSolution(data, cfg.Construction, rng)
	if err != nil {
		return startResult{}, err
	}

	ls.Shuffle(rng)
	sol, err := ls.Run(initial, ce, cfg.OverlapToleranceDegrees)
	if err != nil {
		return startResult{}, err
	}
	return startResult{sol: sol, cost: ce.PenalisedCost(sol), stats: ls.Stats()}, nil
}

// SolveRequest selects a stored instance and the search settings.
type SolveRequest struct {
	InstanceID string
	Seed       int64
	Config     config.SearchConfig
}

// Solver loads instances, solves them and persists the outcome.
type Solver struct {
	Problems ports.ProblemRepository
	Store    ports.SolutionStore
	Observer localsearch.Observer
	Now      func() time.Time
	NewRunID func() string
}

func NewSolver(problems ports.ProblemRepository, store ports.SolutionStore) *Solver {
	return &Solver{
		Problems: problems,
		Store:    store,
		Observer: metrics.MoveObserver{},
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}
}

// Solve runs SolveData on the requested instance and saves a SolutionRecord
// under a fresh run id.
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (rec domain.SolutionRecord, err error) {
	defer obs.Time(ctx, "solve.Solve")(&err)
	start := time.Now()
	defer func() {
		metrics.SolveDuration.Observe(time.Since(start).Seconds())
		switch {
		case err != nil:
			metrics.SolveRuns.WithLabelValues("error").Inc()
		case rec.Feasible:
			metrics.SolveRuns.WithLabelValues("feasible").Inc()
		default:
			metrics.SolveRuns.WithLabelValues("infeasible").Inc()
		}
	}()

	data, err := s.Problems.GetInstance(ctx, req.InstanceID)
	if err != nil {
		return domain.SolutionRecord{}, fmt.Errorf("solve: load instance %q: %w", req.InstanceID, err)
	}

	out, err := SolveData(ctx, data, req.Seed, req.Config, s.Observer)
	if err != nil {
		return domain.SolutionRecord{}, err
	}

	rec = domain.NewSolutionRecord(s.NewRunID(), req.InstanceID, out.Solution, out.PenalisedCost, s.Now().UTC())
	if err := s.Store.Save(ctx, rec); err != nil {
		return domain.SolutionRecord{}, fmt.Errorf("solve: save run %s: %w", rec.RunID, err)
	}
	return rec, nil
}
