// Package cost implements the penalised objective used by the local search.
package cost

import (
	"fmt"
	"math"

	"vrp-search-service/internal/domain"
)

// Evaluator weighs capacity and time-window violations linearly against distance.
type Evaluator struct {
	capacityPenalty int
	twPenalty       int
}

// NewEvaluator returns an evaluator with the given per-unit penalties.
func NewEvaluator(capacityPenalty, twPenalty int) (*Evaluator, error) {
	if capacityPenalty < 0 || twPenalty < 0 {
		return nil, fmt.Errorf("new evaluator: penalties must be non-negative, got capacity=%d tw=%d", capacityPenalty, twPenalty)
	}
	return &Evaluator{capacityPenalty: capacityPenalty, twPenalty: twPenalty}, nil
}

func (e *Evaluator) LoadPenalty(load, capacity int) int {
	return e.capacityPenalty * max(load-capacity, 0)
}

func (e *Evaluator) TWPenalty(timeWarp int) int {
	return e.twPenalty * timeWarp
}

func (e *Evaluator) Penalised(distance, excessLoad, timeWarp, uncollectedPrizes int) int {
	return distance + e.capacityPenalty*excessLoad + e.TWPenalty(timeWarp) + uncollectedPrizes
}

func (e *Evaluator) PenalisedCost(sol *domain.Solution) int {
	return e.Penalised(sol.Distance(), sol.ExcessLoad(), sol.TimeWarp(), sol.UncollectedPrizes())
}

// Cost is distance plus uncollected prizes for feasible solutions.
func (e *Evaluator) Cost(sol *domain.Solution) int {
	if !sol.IsFeasible() {
		return math.MaxInt
	}
	return sol.Distance() + sol.UncollectedPrizes()
}
