package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// NotVisited is the predecessor/successor reported for clients that no route visits.
const NotVisited = -1

// Neighbours holds the predecessor and successor of a location in a solution.
// Route boundaries are represented by the depot (0).
type Neighbours struct {
	Pred int
	Succ int
}

// Solution is a validated, immutable set of routes with solution-wide statistics.
// Solutions are never mutated; search produces a new Solution instead.
type Solution struct {
	routes     []Route
	neighbours []Neighbours
	// routeStart[c] is the capacity of the vehicle serving the route that
	// starts at client c, or -1 when c does not start a route.
	routeStart []int

	numClients        int
	distance          int
	duration          int
	excessLoad        int
	timeWarp          int
	prizes            int
	uncollectedPrizes int
}

// NewSolution validates the given routes against the problem data and
// aggregates their statistics. It never repairs its input.
func NewSolution(data *ProblemData, routes []Route) (*Solution, error) {
	if len(routes) > data.NumVehicles() {
		return nil, fmt.Errorf("new solution: %w: %d routes, %d vehicles", ErrTooManyRoutes, len(routes), data.NumVehicles())
	}

	used := make([]int, data.NumVehicleTypes())
	visits := make([]int, data.NumLocations())
	for i, r := range routes {
		if r.Empty() {
			return nil, fmt.Errorf("new solution: route %d: %w", i+1, ErrEmptyRoute)
		}
		if r.vehicleType < 0 || r.vehicleType >= data.NumVehicleTypes() {
			return nil, fmt.Errorf("new solution: route %d: %w: %d", i+1, ErrUnknownVehicleType, r.vehicleType)
		}
		used[r.vehicleType]++
		for _, c := range r.visits {
			if !data.IsClient(c) {
				return nil, fmt.Errorf("new solution: route %d: %w: %d", i+1, ErrUnknownClient, c)
			}
			visits[c]++
		}
	}

	for vt, n := range used {
		if avail := data.VehicleType(vt).NumAvailable; n > avail {
			return nil, fmt.Errorf("new solution: %w: type %d used %d times, %d available", ErrVehicleTypeOveruse, vt, n, avail)
		}
	}

	for c := 1; c < data.NumLocations(); c++ {
		if visits[c] > 1 {
			return nil, fmt.Errorf("new solution: %w: client %d visited %d times", ErrDuplicateClient, c, visits[c])
		}
		if visits[c] == 0 && data.Client(c).Required {
			return nil, fmt.Errorf("new solution: %w: client %d", ErrMissingClient, c)
		}
	}

	s := &Solution{routes: append([]Route(nil), routes...)}
	s.evaluate(data)
	return s, nil
}

// NewSolutionFromVisits builds routes from plain visit lists, assigning vehicle
// types in catalogue order, and validates the result like NewSolution.
func NewSolutionFromVisits(data *ProblemData, visits [][]int) (*Solution, error) {
	if len(visits) > data.NumVehicles() {
		return nil, fmt.Errorf("new solution: %w: %d routes, %d vehicles", ErrTooManyRoutes, len(visits), data.NumVehicles())
	}

	routes := make([]Route, 0, len(visits))
	vt, left := 0, data.VehicleType(0).NumAvailable
	for _, v := range visits {
		for left == 0 {
			vt++
			left = data.VehicleType(vt).NumAvailable
		}
		r, err := NewRoute(data, v, vt)
		if err != nil {
			return nil, fmt.Errorf("new solution: %w", err)
		}
		routes = append(routes, r)
		left--
	}

	return NewSolution(data, routes)
}

// RandomSolution shuffles the required clients with rng and splits them into
// contiguous, evenly sized chunks, one per vehicle in catalogue order. Chunks
// beyond the fleet size are never produced because the chunk size is derived
// from the vehicle count.
func RandomSolution(data *ProblemData, rng *rand.Rand) (*Solution, error) {
	clients := make([]int, 0, data.NumClients())
	for c := 1; c < data.NumLocations(); c++ {
		if data.Client(c).Required {
			clients = append(clients, c)
		}
	}
	rng.Shuffle(len(clients), func(i, j int) { clients[i], clients[j] = clients[j], clients[i] })

	nVehicles := data.NumVehicles()
	nClients := len(clients)

	// Ceiling division: distribute clients as evenly as possible across vehicles.
	chunkSize := max((nClients+nVehicles-1)/nVehicles, 1)

	routes := make([]Route, 0, nVehicles)
	vt, left := 0, data.VehicleType(0).NumAvailable
	for start := 0; start < nClients; start += chunkSize {
		for left == 0 {
			vt++
			left = data.VehicleType(vt).NumAvailable
		}
		end := min(start+chunkSize, nClients)

		r, err := NewRoute(data, clients[start:end], vt)
		if err != nil {
			return nil, fmt.Errorf("random solution: %w", err)
		}
		routes = append(routes, r)
		left--
	}

	return NewSolution(data, routes)
}

func (s *Solution) evaluate(data *ProblemData) {
	s.neighbours = make([]Neighbours, data.NumLocations())
	s.routeStart = make([]int, data.NumLocations())
	for c := range s.neighbours {
		s.neighbours[c] = Neighbours{Pred: NotVisited, Succ: NotVisited}
		s.routeStart[c] = -1
	}
	s.neighbours[0] = Neighbours{}

	for _, r := range s.routes {
		s.numClients += r.Size()
		s.distance += r.distance
		s.duration += r.duration
		s.excessLoad += r.excessLoad
		s.timeWarp += r.timeWarp
		s.prizes += r.prizes

		s.routeStart[r.visits[0]] = r.capacity
		for i, c := range r.visits {
			pred, succ := 0, 0
			if i > 0 {
				pred = r.visits[i-1]
			}
			if i < len(r.visits)-1 {
				succ = r.visits[i+1]
			}
			s.neighbours[c] = Neighbours{Pred: pred, Succ: succ}
		}
	}

	s.uncollectedPrizes = data.TotalPrize() - s.prizes
}

// Routes returns a copy of the solution's routes.
func (s *Solution) Routes() []Route { return append([]Route(nil), s.routes...) }

// NumRoutes returns the number of (non-empty) routes.
func (s *Solution) NumRoutes() int { return len(s.routes) }

// Neighbours returns a copy of the predecessor/successor structure, indexed by location.
func (s *Solution) Neighbours() []Neighbours { return append([]Neighbours(nil), s.neighbours...) }

// NumLocations returns the number of locations of the problem the solution was built for.
func (s *Solution) NumLocations() int { return len(s.neighbours) }

// IsVisited reports whether client c is visited by some route.
func (s *Solution) IsVisited(c int) bool {
	return c > 0 && c < len(s.neighbours) && s.neighbours[c].Pred != NotVisited
}

func (s *Solution) NumClients() int        { return s.numClients }
func (s *Solution) Distance() int          { return s.distance }
func (s *Solution) Duration() int          { return s.duration }
func (s *Solution) ExcessLoad() int        { return s.excessLoad }
func (s *Solution) TimeWarp() int          { return s.timeWarp }
func (s *Solution) Prizes() int            { return s.prizes }
func (s *Solution) UncollectedPrizes() int { return s.uncollectedPrizes }

// HasExcessLoad reports whether any route exceeds its vehicle capacity.
func (s *Solution) HasExcessLoad() bool { return s.excessLoad > 0 }

// HasTimeWarp reports whether any route violates a time window.
func (s *Solution) HasTimeWarp() bool { return s.timeWarp > 0 }

// IsFeasible reports whether the solution has neither excess load nor time warp.
func (s *Solution) IsFeasible() bool { return !s.HasExcessLoad() && !s.HasTimeWarp() }

// Equal reports whether two solutions describe the same visiting structure:
// equal statistics, identical predecessor/successor pairs for every location,
// and the same vehicle capacity for the route starting at each client. Route
// order and the labels of equal-capacity vehicle types are irrelevant.
func (s *Solution) Equal(o *Solution) bool {
	if s == nil || o == nil {
		return s == o
	}

	if s.numClients != o.numClients ||
		s.distance != o.distance ||
		s.excessLoad != o.excessLoad ||
		s.timeWarp != o.timeWarp ||
		s.prizes != o.prizes ||
		s.uncollectedPrizes != o.uncollectedPrizes ||
		len(s.neighbours) != len(o.neighbours) {
		return false
	}

	for c := range s.neighbours {
		if s.neighbours[c] != o.neighbours[c] || s.routeStart[c] != o.routeStart[c] {
			return false
		}
	}
	return true
}

// String renders one line per route: "Route #k: c1 c2 ...".
func (s *Solution) String() string {
	var b strings.Builder
	for i, r := range s.routes {
		b.WriteString("Route #")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(":")
		for _, c := range r.visits {
			b.WriteString(" ")
			b.WriteString(strconv.Itoa(c))
		}
		b.WriteString("\n")
	}
	return b.String()
}
