package domain

import (
	"fmt"
	"time"
)

// InstanceInfo summarises a stored problem instance.
type InstanceInfo struct {
	ID          string
	Name        string
	NumClients  int
	NumVehicles int
}

// RouteRecord is the persisted form of a route.
type RouteRecord struct {
	VehicleType int   `json:"vehicle_type"`
	Visits      []int `json:"visits"`
}

// SolutionRecord is the persisted outcome of a search run.
type SolutionRecord struct {
	RunID         string        `json:"run_id"`
	InstanceID    string        `json:"instance_id"`
	Routes        []RouteRecord `json:"routes"`
	Distance      int           `json:"distance"`
	ExcessLoad    int           `json:"excess_load"`
	TimeWarp      int           `json:"time_warp"`
	Uncollected   int           `json:"uncollected_prizes"`
	PenalisedCost int           `json:"penalised_cost"`
	Feasible      bool          `json:"feasible"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewSolutionRecord captures the routes and statistics of sol.
func NewSolutionRecord(runID, instanceID string, sol *Solution, penalisedCost int, at time.Time) SolutionRecord {
	routes := make([]RouteRecord, 0, sol.NumRoutes())
	for _, r := range sol.routes {
		routes = append(routes, RouteRecord{VehicleType: r.vehicleType, Visits: r.Visits()})
	}

	return SolutionRecord{
		RunID:         runID,
		InstanceID:    instanceID,
		Routes:        routes,
		Distance:      sol.distance,
		ExcessLoad:    sol.excessLoad,
		TimeWarp:      sol.timeWarp,
		Uncollected:   sol.uncollectedPrizes,
		PenalisedCost: penalisedCost,
		Feasible:      sol.IsFeasible(),
		CreatedAt:     at,
	}
}

// Solution rebuilds and re-validates the recorded solution against data.
func (rec SolutionRecord) Solution(data *ProblemData) (*Solution, error) {
	routes := make([]Route, 0, len(rec.Routes))
	for i, rr := range rec.Routes {
		r, err := NewRoute(data, rr.Visits, rr.VehicleType)
		if err != nil {
			return nil, fmt.Errorf("solution record %s: route %d: %w", rec.RunID, i+1, err)
		}
		routes = append(routes, r)
	}
	return NewSolution(data, routes)
}
