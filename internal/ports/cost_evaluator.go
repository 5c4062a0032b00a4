package ports

import "vrp-search-service/internal/domain"

// Contract for turning route and solution statistics into a single objective.
// The search engine only ever compares values produced by one evaluator.
type CostEvaluator interface {
	// Penalty for carrying load on a vehicle with the given capacity.
	LoadPenalty(load, capacity int) int
	// Penalty for the given amount of time warp.
	TWPenalty(timeWarp int) int
	// Penalised objective from raw statistics.
	Penalised(distance, excessLoad, timeWarp, uncollectedPrizes int) int
	// Penalised objective of a complete solution.
	PenalisedCost(sol *domain.Solution) int
	// Objective of a feasible solution; math.MaxInt when infeasible.
	Cost(sol *domain.Solution) int
}
