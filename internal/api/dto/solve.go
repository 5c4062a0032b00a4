package dto

import (
	"time"

	"vrp-search-service/internal/domain"
)

// SolveRequest selects an instance and optionally overrides the server's
// default search settings for this run.
type SolveRequest struct {
	InstanceID   string            `json:"instance_id" validate:"required,max=128"`
	Seed         int64             `json:"seed"`
	Starts       int               `json:"starts,omitempty" validate:"omitempty,gte=1,lte=64"`
	Construction string            `json:"construction,omitempty" validate:"omitempty,oneof=random nearest"`
	PairPolicy   string            `json:"pair_policy,omitempty" validate:"omitempty,oneof=first-improvement until-stable"`
	Penalties    *PenaltiesRequest `json:"penalties,omitempty"`
}

type PenaltiesRequest struct {
	Capacity int `json:"capacity" validate:"gte=0"`
	TimeWarp int `json:"time_warp" validate:"gte=0"`
}

type RouteResponse struct {
	VehicleType int   `json:"vehicle_type"`
	Visits      []int `json:"visits"`
}

type SolutionResponse struct {
	RunID             string          `json:"run_id"`
	InstanceID        string          `json:"instance_id"`
	Routes            []RouteResponse `json:"routes"`
	Distance          int             `json:"distance"`
	ExcessLoad        int             `json:"excess_load"`
	TimeWarp          int             `json:"time_warp"`
	UncollectedPrizes int             `json:"uncollected_prizes"`
	PenalisedCost     int             `json:"penalised_cost"`
	Feasible          bool            `json:"feasible"`
	CreatedAt         time.Time       `json:"created_at"`
}

func SolutionFromRecord(rec domain.SolutionRecord) SolutionResponse {
	routes := make([]RouteResponse, 0, len(rec.Routes))
	for _, r := range rec.Routes {
		routes = append(routes, RouteResponse{VehicleType: r.VehicleType, Visits: r.Visits})
	}
	return SolutionResponse{
		RunID:             rec.RunID,
		InstanceID:        rec.InstanceID,
		Routes:            routes,
		Distance:          rec.Distance,
		ExcessLoad:        rec.ExcessLoad,
		TimeWarp:          rec.TimeWarp,
		UncollectedPrizes: rec.Uncollected,
		PenalisedCost:     rec.PenalisedCost,
		Feasible:          rec.Feasible,
		CreatedAt:         rec.CreatedAt,
	}
}
