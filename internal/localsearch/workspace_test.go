package localsearch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrp-search-service/internal/cost"
	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/testutil"
)

func randomWorkspace(t *testing.T, seed int64) (*Workspace, *domain.Solution) {
	t.Helper()
	data := testutil.Random(t, 20, seed, []domain.VehicleType{
		{Capacity: 30, NumAvailable: 2},
		{Capacity: 45, NumAvailable: 2},
	}, true)

	sol, err := domain.RandomSolution(data, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)

	ws := newWorkspace(data)
	require.NoError(t, ws.load(sol))
	return ws, sol
}

func TestWorkspaceRouteStatsMatchSolution(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		ws, sol := randomWorkspace(t, seed)

		var dist, excess, tw int
		for r := 0; r < ws.NumRoutes(); r++ {
			rt := ws.Route(r)
			dist += rt.Distance()
			excess += max(rt.Load()-rt.Capacity(), 0)
			tw += rt.TimeWarp()
		}
		assert.Equal(t, sol.Distance(), dist, "seed %d", seed)
		assert.Equal(t, sol.ExcessLoad(), excess, "seed %d", seed)
		assert.Equal(t, sol.TimeWarp(), tw, "seed %d", seed)

		out, err := ws.export()
		require.NoError(t, err)
		assert.True(t, out.Equal(sol), "seed %d", seed)
	}
}

func TestWorkspaceTimeWarpWithReleaseTimes(t *testing.T) {
	for _, closing := range []int{20, 12} {
		data := testutil.Build(t,
			[]domain.Client{
				{Coordinates: domain.Coordinates{X: 3}, Demand: 4, ServiceDuration: 2, TWEarly: 5, TWLate: 10, ReleaseTime: 1, Required: true},
				{Coordinates: domain.Coordinates{X: 3, Y: 4}, Demand: 5, ServiceDuration: 1, TWLate: 8, Required: true},
			},
			[]domain.VehicleType{{Capacity: 6, NumAvailable: 1}},
		)
		depot := data.Depot()
		depot.TWLate = closing
		locs := []domain.Client{depot, data.Client(1), data.Client(2)}
		data, err := domain.NewProblemData(locs, []domain.VehicleType{{Capacity: 6, NumAvailable: 1}}, data.DistanceMatrix(), data.DurationMatrix())
		require.NoError(t, err)

		sol, err := domain.NewSolutionFromVisits(data, [][]int{{1, 2}})
		require.NoError(t, err)

		ws := newWorkspace(data)
		require.NoError(t, ws.load(sol))
		assert.Equal(t, sol.TimeWarp(), ws.Route(0).TimeWarp(), "closing time %d", closing)
	}
}

func TestWorkspaceIgnoresDepotReleaseTime(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		random := testutil.Random(t, 18, seed, []domain.VehicleType{{Capacity: 40, NumAvailable: 3}}, true)

		locs := make([]domain.Client, random.NumLocations())
		for c := range locs {
			locs[c] = random.Client(c)
		}
		locs[0].ReleaseTime = 400
		data, err := domain.NewProblemData(locs, []domain.VehicleType{{Capacity: 40, NumAvailable: 3}}, random.DistanceMatrix(), random.DurationMatrix())
		require.NoError(t, err)

		sol, err := domain.RandomSolution(data, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		ws := newWorkspace(data)
		require.NoError(t, ws.load(sol))

		timeWarp := 0
		for r := 0; r < ws.NumRoutes(); r++ {
			timeWarp += ws.Route(r).TimeWarp()
		}
		assert.Equal(t, sol.TimeWarp(), timeWarp, "seed %d", seed)
	}
}

func TestWorkspaceEmptiedRouteResetsSector(t *testing.T) {
	data := testutil.Uniform(t, []int{1, 1}, 2, 2)
	sol, err := domain.NewSolutionFromVisits(data, [][]int{{1}, {2}})
	require.NoError(t, err)

	ws := newWorkspace(data)
	require.NoError(t, ws.load(sol))

	u := ws.Route(0).Node(1)
	ws.Remove(u)
	ws.InsertAfter(u, ws.Route(1).Node(1))
	ws.Update(0)
	ws.Update(1)

	require.True(t, ws.Route(0).Empty())
	assert.Equal(t, circleSector{}, ws.Route(0).sector)
	assert.Equal(t, 2, ws.Route(1).Size())
}

// Every evaluated exchange must predict the exact change in penalised cost.
func TestExchangeDeltaMatchesAppliedMove(t *testing.T) {
	ce, err := cost.NewEvaluator(20, 6)
	require.NoError(t, err)

	for seed := int64(1); seed <= 3; seed++ {
		ws, sol := randomWorkspace(t, seed)
		before := ce.PenalisedCost(sol)
		n := ws.Data().NumLocations()

		for _, nm := range [][2]int{{1, 0}, {2, 0}, {1, 1}, {2, 1}, {2, 2}} {
			op, err := NewExchange(nm[0], nm[1])
			require.NoError(t, err)

			for uc := 1; uc < n; uc++ {
				targets := make([]NodeID, 0, n)
				for vc := 1; vc < n; vc++ {
					if vc != uc {
						targets = append(targets, NodeID(vc))
					}
				}
				targets = append(targets, ws.Route(0).StartDepot(), ws.Route(3).StartDepot())

				for _, v := range targets {
					require.NoError(t, ws.load(sol))
					delta, ok := op.evaluate(ws, NodeID(uc), v, ce)
					if !ok {
						continue
					}
					op.apply(ws, NodeID(uc), v)
					after, err := ws.export()
					require.NoError(t, err)
					require.Equal(t, ce.PenalisedCost(after)-before, delta, "%s u=%d v=%d seed %d", op.Name(), uc, v, seed)
				}
			}
		}
	}
}

func TestImprovingMovesLowerCost(t *testing.T) {
	ce, err := cost.NewEvaluator(20, 6)
	require.NoError(t, err)
	ws, sol := randomWorkspace(t, 9)
	before := ce.PenalisedCost(sol)
	n := ws.Data().NumLocations()

	twoOpt := NewTwoOpt()
	for uc := 1; uc < n; uc++ {
		for vc := 1; vc < n; vc++ {
			if uc == vc {
				continue
			}
			require.NoError(t, ws.load(sol))
			if !twoOpt.TryMove(ws, NodeID(uc), NodeID(vc), ce) {
				continue
			}
			after, err := ws.export()
			require.NoError(t, err)
			assert.Less(t, ce.PenalisedCost(after), before, "two-opt u=%d v=%d", uc, vc)
		}
	}

	for _, op := range []RouteOperator{NewRelocateStar(), NewSwapStar()} {
		for r1 := 0; r1 < ws.NumRoutes(); r1++ {
			for r2 := 0; r2 < r1; r2++ {
				require.NoError(t, ws.load(sol))
				if !op.TryMove(ws, r1, r2, ce) {
					continue
				}
				after, err := ws.export()
				require.NoError(t, err)
				assert.Less(t, ce.PenalisedCost(after), before, "%s %d/%d", op.Name(), r1, r2)
			}
		}
	}
}

func TestCircleSector(t *testing.T) {
	s := newSector(100)
	assert.True(t, s.enclosed(100))
	assert.False(t, s.enclosed(200))

	s.extend(200)
	assert.Equal(t, circleSector{start: 100, end: 200}, s)
	assert.True(t, s.enclosed(150))

	// Extending backwards across zero takes the shorter arc.
	s.extend(65000)
	assert.Equal(t, 65000, s.start)
	assert.True(t, s.enclosed(0))

	a := circleSector{start: 0, end: 1000}
	b := circleSector{start: 2000, end: 3000}
	assert.False(t, sectorsOverlap(a, b, 0))
	assert.True(t, sectorsOverlap(a, b, 1000))
	assert.True(t, sectorsOverlap(a, circleSector{start: 500, end: 600}, 0))

	assert.Equal(t, 0, polarAngle(0, 0, 1, 0))
	assert.Equal(t, 16384, polarAngle(0, 0, 0, 1))
	assert.Equal(t, 49152, polarAngle(0, 0, 0, -1))
	assert.Equal(t, sectorUnits/4, degreesToSector(90))
}

func TestComputeNeighbours(t *testing.T) {
	data := testutil.Uniform(t, []int{1, 1, 1, 1, 1}, 10, 2)

	nb, err := ComputeNeighbours(data, NeighbourhoodParams{NumNeighbours: 2, SymmetricProximity: true})
	require.NoError(t, err)
	require.Len(t, nb, data.NumLocations())
	assert.Empty(t, nb[0])
	assert.Equal(t, []int{2, 3}, nb[1])
	assert.Equal(t, []int{1, 3}, nb[2])
	assert.Equal(t, []int{2, 4}, nb[3])
	assert.Equal(t, []int{4, 3}, nb[5])

	sym, err := ComputeNeighbours(data, NeighbourhoodParams{NumNeighbours: 1, SymmetricNeighbours: true})
	require.NoError(t, err)
	for i := 1; i < len(sym); i++ {
		for _, j := range sym[i] {
			assert.Contains(t, sym[j], i, "%d lists %d", i, j)
		}
	}

	_, err = ComputeNeighbours(data, NeighbourhoodParams{NumNeighbours: 0})
	require.ErrorIs(t, err, ErrInvalidNeighbours)
}

func TestSetNeighboursValidation(t *testing.T) {
	data := testutil.Uniform(t, []int{1, 1, 1}, 10, 1)
	nb, err := ComputeNeighbours(data, DefaultNeighbourhoodParams())
	require.NoError(t, err)
	ls, err := New(data, nb)
	require.NoError(t, err)

	cases := map[string]Neighbours{
		"wrong length":   {{}, {2}},
		"depot listed":   {{1}, {2}, {1}, {1}},
		"self":           {{}, {1}, {1}, {1}},
		"depot as entry": {{}, {0}, {1}, {1}},
		"out of range":   {{}, {4}, {1}, {1}},
	}
	for name, bad := range cases {
		assert.ErrorIs(t, ls.SetNeighbours(bad), ErrInvalidNeighbours, name)
	}

	good := Neighbours{{}, {3}, {1}, {2}}
	require.NoError(t, ls.SetNeighbours(good))
	good[1][0] = 2
	assert.Equal(t, Neighbours{{}, {3}, {1}, {2}}, ls.Neighbours())
}
