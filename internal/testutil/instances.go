// Package testutil builds small routing instances for package tests.
package testutil

import (
	"math/rand"
	"testing"

	"vrp-search-service/internal/domain"
)

// Horizon is the depot closing time used when a test does not care about time windows.
const Horizon = 1_000_000

// Build assembles problem data with the depot at the origin and Euclidean
// distance and duration matrices. Clients with a zero TWLate get the full horizon.
func Build(tb testing.TB, clients []domain.Client, vehicleTypes []domain.VehicleType) *domain.ProblemData {
	tb.Helper()

	locs := make([]domain.Client, 0, len(clients)+1)
	locs = append(locs, domain.Client{TWLate: Horizon})
	for _, c := range clients {
		if c.TWLate == 0 {
			c.TWLate = Horizon
		}
		locs = append(locs, c)
	}

	pts := make([]domain.Coordinates, len(locs))
	for i, c := range locs {
		pts[i] = c.Coordinates
	}
	m := domain.EuclideanMatrix(pts)

	data, err := domain.NewProblemData(locs, vehicleTypes, m, m)
	if err != nil {
		tb.Fatalf("build instance: %v", err)
	}
	return data
}

// Uniform places one required client per demand on the x axis at 10, 20, ...
// and uses a single vehicle type.
func Uniform(tb testing.TB, demands []int, capacity, numVehicles int) *domain.ProblemData {
	tb.Helper()

	clients := make([]domain.Client, len(demands))
	for i, d := range demands {
		clients[i] = domain.Client{
			Coordinates: domain.Coordinates{X: float64(10 * (i + 1))},
			Demand:      d,
			Required:    true,
		}
	}
	return Build(tb, clients, []domain.VehicleType{{Capacity: capacity, NumAvailable: numVehicles}})
}

// Random generates n required clients on a 100×100 grid around a central
// depot. With timeWindows set, each client gets a window of width 200 inside
// a horizon of 1000.
func Random(tb testing.TB, n int, seed int64, vehicleTypes []domain.VehicleType, timeWindows bool) *domain.ProblemData {
	tb.Helper()

	rng := rand.New(rand.NewSource(seed))
	locs := make([]domain.Client, 0, n+1)
	locs = append(locs, domain.Client{Coordinates: domain.Coordinates{X: 50, Y: 50}, TWLate: Horizon})
	for i := 0; i < n; i++ {
		c := domain.Client{
			Coordinates:     domain.Coordinates{X: float64(rng.Intn(101)), Y: float64(rng.Intn(101))},
			Demand:          1 + rng.Intn(10),
			ServiceDuration: 5,
			TWLate:          Horizon,
			Required:        true,
		}
		if timeWindows {
			c.TWEarly = rng.Intn(800)
			c.TWLate = c.TWEarly + 200
		}
		locs = append(locs, c)
	}
	if timeWindows {
		locs[0].TWLate = 1200
	}

	pts := make([]domain.Coordinates, len(locs))
	for i, c := range locs {
		pts[i] = c.Coordinates
	}
	m := domain.EuclideanMatrix(pts)

	data, err := domain.NewProblemData(locs, vehicleTypes, m, m)
	if err != nil {
		tb.Fatalf("random instance: %v", err)
	}
	return data
}
