package services

import (
	"fmt"

	"vrp-search-service/internal/config"
	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/localsearch"
)

// NodeOperator returns the node operator registered under name.
func NodeOperator(name string) (localsearch.NodeOperator, error) {
	switch name {
	case "relocate":
		return localsearch.NewExchange(1, 0)
	case "swap":
		return localsearch.NewExchange(1, 1)
	case "exchange20":
		return localsearch.NewExchange(2, 0)
	case "exchange21":
		return localsearch.NewExchange(2, 1)
	case "exchange22":
		return localsearch.NewExchange(2, 2)
	case "two-opt":
		return localsearch.NewTwoOpt(), nil
	}
	return nil, fmt.Errorf("node operator: unknown name %q", name)
}

// RouteOperator returns the route operator registered under name.
func RouteOperator(name string) (localsearch.RouteOperator, error) {
	switch name {
	case "relocate-star":
		return localsearch.NewRelocateStar(), nil
	case "swap-star":
		return localsearch.NewSwapStar(), nil
	}
	return nil, fmt.Errorf("route operator: unknown name %q", name)
}

// NeighbourhoodParams converts the configured neighbourhood settings.
func NeighbourhoodParams(cfg config.SearchConfig) localsearch.NeighbourhoodParams {
	return localsearch.NeighbourhoodParams{
		WeightWaitTime:      cfg.Neighbourhood.WeightWaitTime,
		WeightTimeWarp:      cfg.Neighbourhood.WeightTimeWarp,
		NumNeighbours:       cfg.Neighbourhood.NumNeighbours,
		SymmetricProximity:  cfg.Neighbourhood.SymmetricProximity,
		SymmetricNeighbours: cfg.Neighbourhood.SymmetricNeighbours,
	}
}

// BuildLocalSearch creates a LocalSearch over data with the configured
// operators and pair policy. nb may be shared between calls; it is copied.
func BuildLocalSearch(data *domain.ProblemData, nb localsearch.Neighbours, cfg config.SearchConfig, observer localsearch.Observer) (*localsearch.LocalSearch, error) {
	policy, err := localsearch.ParsePairPolicy(cfg.PairPolicy)
	if err != nil {
		return nil, fmt.Errorf("build local search: %w", err)
	}

	opts := []localsearch.Option{localsearch.WithPairPolicy(policy)}
	if observer != nil {
		opts = append(opts, localsearch.WithObserver(observer))
	}

	ls, err := localsearch.New(data, nb, opts...)
	if err != nil {
		return nil, fmt.Errorf("build local search: %w", err)
	}

	for _, name := range cfg.NodeOperators {
		op, err := NodeOperator(name)
		if err != nil {
			return nil, fmt.Errorf("build local search: %w", err)
		}
		ls.AddNodeOperator(op)
	}
	for _, name := range cfg.RouteOperators {
		op, err := RouteOperator(name)
		if err != nil {
			return nil, fmt.Errorf("build local search: %w", err)
		}
		ls.AddRouteOperator(op)
	}

	return ls, nil
}
