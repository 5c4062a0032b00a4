package cost_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrp-search-service/internal/cost"
	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/ports"
	"vrp-search-service/internal/testutil"
)

var _ ports.CostEvaluator = (*cost.Evaluator)(nil)

func TestEvaluatorPenalties(t *testing.T) {
	e, err := cost.NewEvaluator(20, 6)
	require.NoError(t, err)

	assert.Zero(t, e.LoadPenalty(5, 6))
	assert.Zero(t, e.LoadPenalty(6, 6))
	assert.Equal(t, 60, e.LoadPenalty(9, 6))
	assert.Equal(t, 18, e.TWPenalty(3))
	assert.Equal(t, 100+40+12+7, e.Penalised(100, 2, 2, 7))
}

func TestNewEvaluatorRejectsNegativePenalties(t *testing.T) {
	_, err := cost.NewEvaluator(-1, 0)
	require.Error(t, err)
}

func TestEvaluatorSolutionCosts(t *testing.T) {
	data := testutil.Uniform(t, []int{3, 3, 3, 3}, 6, 2)
	e, err := cost.NewEvaluator(10, 1)
	require.NoError(t, err)

	feasible, err := domain.NewSolutionFromVisits(data, [][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, feasible.Distance(), e.Cost(feasible))
	assert.Equal(t, feasible.Distance(), e.PenalisedCost(feasible))

	infeasible, err := domain.NewSolutionFromVisits(data, [][]int{{1, 2, 3}, {4}})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, e.Cost(infeasible))
	assert.Equal(t, infeasible.Distance()+30, e.PenalisedCost(infeasible))
}
