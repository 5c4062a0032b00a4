// Package localsearch improves routing solutions by repeatedly applying the
// first improving move found in a granular neighbourhood.
//
// A LocalSearch is not safe for concurrent use. Independent instances may
// share the same read-only problem data.
package localsearch

import (
	"errors"
	"fmt"
	"math/rand"

	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/ports"
)

var (
	ErrNoOperators     = errors.New("no operators registered")
	ErrProblemMismatch = errors.New("solution does not match problem data")
)

// PairPolicy decides how long route operators are applied to one route pair
// during intensification.
type PairPolicy int

const (
	// PairFirstImprovement moves on to the next pair after the first improving operator.
	PairFirstImprovement PairPolicy = iota
	// PairUntilStable re-applies all operators to the pair until none improves.
	PairUntilStable
)

func (p PairPolicy) String() string {
	switch p {
	case PairFirstImprovement:
		return "first-improvement"
	case PairUntilStable:
		return "until-stable"
	}
	return fmt.Sprintf("PairPolicy(%d)", int(p))
}

// ParsePairPolicy maps a configuration name onto a PairPolicy.
func ParsePairPolicy(s string) (PairPolicy, error) {
	switch s {
	case "", "first-improvement":
		return PairFirstImprovement, nil
	case "until-stable":
		return PairUntilStable, nil
	}
	return 0, fmt.Errorf("parse pair policy: unknown policy %q", s)
}

// Observer is notified of every applied move.
type Observer interface {
	MoveApplied(operator string)
}

// Stats describes the most recent Search, Intensify or Run call.
type Stats struct {
	NumMoves        int
	NumSweeps       int
	MovesByOperator map[string]int
}

type Option func(*LocalSearch)

func WithObserver(o Observer) Option {
	return func(ls *LocalSearch) { ls.observer = o }
}

func WithPairPolicy(p PairPolicy) Option {
	return func(ls *LocalSearch) { ls.policy = p }
}

type LocalSearch struct {
	data       *domain.ProblemData
	ws         *Workspace
	neighbours Neighbours

	nodeOps  []NodeOperator
	routeOps []RouteOperator

	orderNodes  []int
	orderRoutes []int

	lastModified     []int
	lastTestedNodes  []int
	lastTestedRoutes []int
	numMoves         int
	searchCompleted  bool

	policy   PairPolicy
	observer Observer
	stats    Stats
}

// New returns a LocalSearch over data using the given neighbourhood.
func New(data *domain.ProblemData, neighbours Neighbours, opts ...Option) (*LocalSearch, error) {
	if err := neighbours.validate(data.NumLocations()); err != nil {
		return nil, fmt.Errorf("new local search: %w", err)
	}

	ls := &LocalSearch{
		data:             data,
		ws:               newWorkspace(data),
		neighbours:       neighbours.clone(),
		orderNodes:       make([]int, 0, data.NumClients()),
		orderRoutes:      make([]int, 0, data.NumVehicles()),
		lastModified:     make([]int, data.NumVehicles()),
		lastTestedNodes:  make([]int, data.NumLocations()),
		lastTestedRoutes: make([]int, data.NumVehicles()),
	}
	for c := 1; c < data.NumLocations(); c++ {
		ls.orderNodes = append(ls.orderNodes, c)
	}
	for r := 0; r < data.NumVehicles(); r++ {
		ls.orderRoutes = append(ls.orderRoutes, r)
	}
	for _, opt := range opts {
		opt(ls)
	}
	return ls, nil
}

func (ls *LocalSearch) AddNodeOperator(op NodeOperator)   { ls.nodeOps = append(ls.nodeOps, op) }
func (ls *LocalSearch) AddRouteOperator(op RouteOperator) { ls.routeOps = append(ls.routeOps, op) }

// SetNeighbours replaces the neighbourhood used from the next call on.
func (ls *LocalSearch) SetNeighbours(nb Neighbours) error {
	if err := nb.validate(ls.data.NumLocations()); err != nil {
		return fmt.Errorf("set neighbours: %w", err)
	}
	ls.neighbours = nb.clone()
	return nil
}

// Neighbours returns a copy of the current neighbourhood.
func (ls *LocalSearch) Neighbours() Neighbours { return ls.neighbours.clone() }

// Shuffle randomises the order in which clients, routes and operators are tried.
func (ls *LocalSearch) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ls.orderNodes), func(i, j int) {
		ls.orderNodes[i], ls.orderNodes[j] = ls.orderNodes[j], ls.orderNodes[i]
	})
	rng.Shuffle(len(ls.orderRoutes), func(i, j int) {
		ls.orderRoutes[i], ls.orderRoutes[j] = ls.orderRoutes[j], ls.orderRoutes[i]
	})
	rng.Shuffle(len(ls.nodeOps), func(i, j int) { ls.nodeOps[i], ls.nodeOps[j] = ls.nodeOps[j], ls.nodeOps[i] })
	rng.Shuffle(len(ls.routeOps), func(i, j int) { ls.routeOps[i], ls.routeOps[j] = ls.routeOps[j], ls.routeOps[i] })
}

// Stats returns statistics of the most recent call.
func (ls *LocalSearch) Stats() Stats {
	s := ls.stats
	s.MovesByOperator = make(map[string]int, len(ls.stats.MovesByOperator))
	for k, v := range ls.stats.MovesByOperator {
		s.MovesByOperator[k] = v
	}
	return s
}

// SearchCompleted reports whether the last phase ended because a full sweep found no improving move.
func (ls *LocalSearch) SearchCompleted() bool { return ls.searchCompleted }

// Search applies node operators until no improving move remains and returns the improved solution.
func (ls *LocalSearch) Search(sol *domain.Solution, cost ports.CostEvaluator) (*domain.Solution, error) {
	if len(ls.nodeOps) == 0 {
		return nil, fmt.Errorf("search: %w", ErrNoOperators)
	}
	if err := ls.load(sol); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	ls.search(cost)
	return ls.ws.export()
}

// Intensify applies route operators to pairs of routes whose circle sectors
// overlap within overlapToleranceDegrees and returns the improved solution.
func (ls *LocalSearch) Intensify(sol *domain.Solution, cost ports.CostEvaluator, overlapToleranceDegrees int) (*domain.Solution, error) {
	if len(ls.routeOps) == 0 {
		return nil, fmt.Errorf("intensify: %w", ErrNoOperators)
	}
	if err := ls.load(sol); err != nil {
		return nil, fmt.Errorf("intensify: %w", err)
	}
	ls.intensify(cost, degreesToSector(overlapToleranceDegrees))
	return ls.ws.export()
}

// Run alternates Search and Intensify until intensification finds no
// improving move. Without route operators it is equivalent to Search.
func (ls *LocalSearch) Run(sol *domain.Solution, cost ports.CostEvaluator, overlapToleranceDegrees int) (*domain.Solution, error) {
	if len(ls.nodeOps) == 0 {
		return nil, fmt.Errorf("run: %w", ErrNoOperators)
	}
	if err := ls.load(sol); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	tolerance := degreesToSector(overlapToleranceDegrees)
	for {
		ls.search(cost)
		if len(ls.routeOps) == 0 {
			break
		}
		before := ls.numMoves
		ls.intensify(cost, tolerance)
		if ls.numMoves == before {
			break
		}
	}
	return ls.ws.export()
}

func (ls *LocalSearch) load(sol *domain.Solution) error {
	if err := ls.ws.load(sol); err != nil {
		return err
	}
	for i := range ls.lastModified {
		ls.lastModified[i] = 0
		ls.lastTestedRoutes[i] = -1
	}
	for i := range ls.lastTestedNodes {
		ls.lastTestedNodes[i] = -1
	}
	ls.numMoves = 0
	ls.stats = Stats{MovesByOperator: make(map[string]int)}
	return nil
}

func (ls *LocalSearch) search(cost ports.CostEvaluator) {
	ls.searchCompleted = false
	for step := 0; !ls.searchCompleted; step++ {
		ls.searchCompleted = true
		ls.stats.NumSweeps++

		for _, uc := range ls.orderNodes {
			u := NodeID(uc)
			lastTested := ls.lastTestedNodes[uc]
			ls.lastTestedNodes[uc] = ls.numMoves

			ls.maybeRemove(u, cost)
			ls.maybeInsert(u, cost)
			if ls.ws.RouteOf(u) == noRoute {
				continue
			}

			for _, vc := range ls.neighbours[uc] {
				v := NodeID(vc)
				if ls.ws.RouteOf(v) == noRoute {
					continue
				}
				ru, rv := ls.ws.RouteOf(u), ls.ws.RouteOf(v)
				if ls.lastModified[ru] <= lastTested && ls.lastModified[rv] <= lastTested {
					continue
				}
				if ls.applyNodeOps(u, v, cost) {
					continue
				}
				if pv := ls.ws.Prev(v); ls.ws.IsDepot(pv) {
					ls.applyNodeOps(u, pv, cost)
				}
			}

			if step > 0 {
				ls.applyEmptyRouteMoves(u, cost)
			}
		}
	}
}

func (ls *LocalSearch) intensify(cost ports.CostEvaluator, tolerance int) {
	ls.searchCompleted = false
	for !ls.searchCompleted {
		ls.searchCompleted = true
		ls.stats.NumSweeps++

		for _, ru := range ls.orderRoutes {
			routeU := ls.ws.routes[ru]
			if routeU.Empty() {
				continue
			}
			lastTested := ls.lastTestedRoutes[ru]
			ls.lastTestedRoutes[ru] = ls.numMoves

			for rv := 0; rv < ru; rv++ {
				routeV := ls.ws.routes[rv]
				if routeU.Empty() {
					break
				}
				if routeV.Empty() || !sectorsOverlap(routeU.sector, routeV.sector, tolerance) {
					continue
				}
				if max(ls.lastModified[ru], ls.lastModified[rv]) > lastTested {
					ls.applyRouteOps(ru, rv, cost)
				}
			}
		}
	}
}

func (ls *LocalSearch) applyNodeOps(u, v NodeID, cost ports.CostEvaluator) bool {
	ru, rv := ls.ws.RouteOf(u), ls.ws.RouteOf(v)
	for _, op := range ls.nodeOps {
		if op.TryMove(ls.ws, u, v, cost) {
			ls.moved(op.Name(), ru, rv)
			return true
		}
	}
	return false
}

func (ls *LocalSearch) applyRouteOps(r1, r2 int, cost ports.CostEvaluator) bool {
	improved := false
	for {
		applied := false
		for _, op := range ls.routeOps {
			if ls.ws.routes[r1].Empty() || ls.ws.routes[r2].Empty() {
				return improved
			}
			if op.TryMove(ls.ws, r1, r2, cost) {
				ls.moved(op.Name(), r1, r2)
				improved, applied = true, true
				if ls.policy == PairFirstImprovement {
					return true
				}
				break
			}
		}
		if !applied {
			return improved
		}
	}
}

// applyEmptyRouteMoves tries moving u into one empty route per vehicle type.
func (ls *LocalSearch) applyEmptyRouteMoves(u NodeID, cost ports.CostEvaluator) {
	seen := make([]bool, ls.data.NumVehicleTypes())
	for _, r := range ls.ws.routes {
		if !r.Empty() || seen[r.vehicleType] {
			continue
		}
		seen[r.vehicleType] = true
		if ls.ws.RouteOf(u) == noRoute {
			return
		}
		if ls.applyNodeOps(u, r.start, cost) {
			return
		}
	}
}

// maybeRemove drops an optional client when its prize does not cover its cost.
func (ls *LocalSearch) maybeRemove(u NodeID, cost ports.CostEvaluator) {
	ru := ls.ws.RouteOf(u)
	c := ls.data.Client(int(u))
	if ru == noRoute || c.Required {
		return
	}

	r := ls.ws.routes[ru]
	pu := ls.ws.Position(u)
	delta := ls.ws.propose(segment{r, 0, pu - 1}, segment{r, pu + 1, r.last()}).delta(r, cost) + c.Prize
	if delta >= 0 {
		return
	}
	ls.ws.Remove(u)
	ls.ws.Update(ru)
	ls.moved("remove", ru, ru)
}

// maybeInsert adds an unvisited client after the routed neighbour (or the
// first route's start depot) where it is cheapest. Required clients are
// always inserted; optional ones only when their prize outweighs the cost.
func (ls *LocalSearch) maybeInsert(u NodeID, cost ports.CostEvaluator) {
	if ls.ws.RouteOf(u) != noRoute {
		return
	}
	c := ls.data.Client(int(u))

	after := ls.ws.routes[0].start
	best := ls.insertCost(u, after, cost)
	for _, vc := range ls.neighbours[u] {
		v := NodeID(vc)
		if ls.ws.RouteOf(v) == noRoute {
			continue
		}
		if d := ls.insertCost(u, v, cost); d < best {
			best, after = d, v
		}
	}

	if !c.Required && best >= 0 {
		return
	}
	rv := ls.ws.RouteOf(after)
	ls.ws.InsertAfter(u, after)
	ls.ws.Update(rv)
	ls.moved("insert", rv, rv)
}

func (ls *LocalSearch) insertCost(u, after NodeID, cost ports.CostEvaluator) int {
	ws := ls.ws
	r := ws.routes[ws.RouteOf(after)]
	pa := ws.Position(after)
	uc, ac, nc := int(u), ws.Client(after), ws.Client(r.nodes[pa+1])

	dist := r.distance - ws.data.Dist(ac, nc) + ws.data.Dist(ac, uc) + ws.data.Dist(uc, nc)
	load := r.load + ws.demand(uc)
	t := merge(ws.dur, merge(ws.dur, r.before[pa], ws.tws[uc]), r.after[pa+1])

	return routeDelta(r, dist, load, t.totalTimeWarp(), cost) - ls.data.Client(uc).Prize
}

func (ls *LocalSearch) moved(op string, r1, r2 int) {
	ls.numMoves++
	ls.searchCompleted = false
	ls.lastModified[r1] = ls.numMoves
	ls.lastModified[r2] = ls.numMoves
	ls.stats.NumMoves++
	ls.stats.MovesByOperator[op]++
	if ls.observer != nil {
		ls.observer.MoveApplied(op)
	}
}
