package services

import (
	"errors"
	"fmt"
	"math"

	"vrp-search-service/internal/domain"
)

// NearestNeighbourSolution builds an initial solution with a greedy
// nearest-neighbour rule.
//
// Each vehicle, in catalogue order, leaves the depot and repeatedly drives to
// the unvisited required client with the shortest travel duration that still
// fits in its remaining capacity. Clients left over once every vehicle has
// been used are appended to the last route, so the result may carry excess
// load for the local search to repair. Optional clients are not visited.
func NearestNeighbourSolution(data *domain.ProblemData) (*domain.Solution, error) {
	remaining := make(map[int]struct{})
	for c := 1; c < data.NumLocations(); c++ {
		if data.Client(c).Required {
			remaining[c] = struct{}{}
		}
	}

	types := make([]int, 0, data.NumVehicles())
	for vt := 0; vt < data.NumVehicleTypes(); vt++ {
		for i := 0; i < data.VehicleType(vt).NumAvailable; i++ {
			types = append(types, vt)
		}
	}

	var visits [][]int
	var routeTypes []int
	for _, vt := range types {
		if len(remaining) == 0 {
			break
		}

		capacity := data.VehicleType(vt).Capacity
		load, current := 0, 0
		var route []int
		for len(remaining) > 0 {
			next := nearest(data, current, remaining, capacity-load)
			// An empty vehicle always takes a client, even one that does not fit.
			if next == 0 && len(route) == 0 {
				next = nearest(data, current, remaining, math.MaxInt)
			}
			if next == 0 {
				break
			}

			route = append(route, next)
			load += data.Client(next).Demand
			delete(remaining, next)
			current = next
		}
		visits = append(visits, route)
		routeTypes = append(routeTypes, vt)
	}

	if len(remaining) > 0 {
		if len(visits) == 0 {
			return nil, errors.New("nearest neighbour: no vehicles available")
		}
		last := len(visits) - 1
		current := visits[last][len(visits[last])-1]
		for len(remaining) > 0 {
			next := nearest(data, current, remaining, math.MaxInt)
			visits[last] = append(visits[last], next)
			delete(remaining, next)
			current = next
		}
	}

	routes := make([]domain.Route, 0, len(visits))
	for i, v := range visits {
		r, err := domain.NewRoute(data, v, routeTypes[i])
		if err != nil {
			return nil, fmt.Errorf("nearest neighbour: %w", err)
		}
		routes = append(routes, r)
	}

	sol, err := domain.NewSolution(data, routes)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbour: %w", err)
	}
	return sol, nil
}

// nearest returns the remaining client closest to from whose demand is at
// most room, or 0 when none qualifies.
func nearest(data *domain.ProblemData, from int, remaining map[int]struct{}, room int) int {
	best := 0
	minDuration := math.MaxInt

	for c := range remaining {
		if data.Client(c).Demand > room {
			continue
		}
		d := data.Duration(from, c)
		// Tie-breaker ensures deterministic ordering when durations are equal.
		if d < minDuration || (d == minDuration && c < best) {
			minDuration = d
			best = c
		}
	}
	return best
}
