package localsearch

import (
	"fmt"

	"vrp-search-service/internal/domain"
)

// NodeID addresses a node in the workspace arena. Client c owns NodeID(c);
// route slot r owns the depot sentinels numLocations+2r (start) and
// numLocations+2r+1 (end).
type NodeID int

const noRoute = -1

type node struct {
	client int
	route  int
	pos    int
	prev   NodeID
	next   NodeID
}

// Route is a mutable route slot of the workspace. Its cached prefix and
// suffix data are valid only after Workspace.Update.
type Route struct {
	idx         int
	vehicleType int
	capacity    int
	start       NodeID
	end         NodeID

	nodes   []NodeID // by position, start and end depot included
	cumDist []int
	cumLoad []int
	before  []tws
	after   []tws

	distance int
	load     int
	timeWarp int
	sector   circleSector
}

func (r *Route) Index() int          { return r.idx }
func (r *Route) VehicleType() int    { return r.vehicleType }
func (r *Route) Capacity() int       { return r.capacity }
func (r *Route) StartDepot() NodeID  { return r.start }
func (r *Route) EndDepot() NodeID    { return r.end }
func (r *Route) Distance() int       { return r.distance }
func (r *Route) Load() int           { return r.load }
func (r *Route) TimeWarp() int       { return r.timeWarp }
func (r *Route) Size() int           { return len(r.nodes) - 2 }

// Visits returns the client locations of the route in order.
func (r *Route) Visits(ws *Workspace) []int {
	visits := make([]int, 0, r.Size())
	for pos := 1; pos < r.last(); pos++ {
		visits = append(visits, ws.Client(r.nodes[pos]))
	}
	return visits
}
func (r *Route) Empty() bool         { return r.Size() == 0 }
func (r *Route) Node(pos int) NodeID { return r.nodes[pos] }

// last is the position of the end depot.
func (r *Route) last() int { return len(r.nodes) - 1 }

// Workspace is the linked, index-based representation the operators edit.
type Workspace struct {
	data   *domain.ProblemData
	dur    domain.Matrix
	nodes  []node
	routes []*Route
	tws    []tws
	angles []int
}

func newWorkspace(data *domain.ProblemData) *Workspace {
	n := data.NumLocations()
	ws := &Workspace{
		data:   data,
		dur:    data.DurationMatrix(),
		nodes:  make([]node, n+2*data.NumVehicles()),
		routes: make([]*Route, 0, data.NumVehicles()),
		tws:    make([]tws, n),
		angles: make([]int, n),
	}

	depot := data.Depot()
	for c := 0; c < n; c++ {
		client := data.Client(c)
		ws.tws[c] = newTWS(c, client)
		if c == 0 {
			// Routes wait only for the release of the clients they carry.
			ws.tws[c].release = 0
		}
		ws.angles[c] = polarAngle(depot.X, depot.Y, client.X, client.Y)
		ws.nodes[c] = node{client: c, route: noRoute, prev: -1, next: -1}
	}

	r := 0
	for vt := 0; vt < data.NumVehicleTypes(); vt++ {
		typ := data.VehicleType(vt)
		for i := 0; i < typ.NumAvailable; i++ {
			start := NodeID(n + 2*r)
			ws.nodes[start] = node{client: 0, route: r}
			ws.nodes[start+1] = node{client: 0, route: r}
			ws.routes = append(ws.routes, &Route{
				idx:         r,
				vehicleType: vt,
				capacity:    typ.Capacity,
				start:       start,
				end:         start + 1,
			})
			r++
		}
	}

	ws.clear()
	return ws
}

func (ws *Workspace) clear() {
	for c := 1; c < ws.data.NumLocations(); c++ {
		ws.nodes[c].route = noRoute
		ws.nodes[c].prev, ws.nodes[c].next = -1, -1
	}
	for _, r := range ws.routes {
		ws.nodes[r.start].next = r.end
		ws.nodes[r.end].prev = r.start
		ws.Update(r.idx)
	}
}

// load replaces the workspace contents with sol. Each route goes to the
// first free slot of its vehicle type.
func (ws *Workspace) load(sol *domain.Solution) error {
	if sol.NumLocations() != ws.data.NumLocations() {
		return fmt.Errorf("load solution: %w: %d locations, problem has %d", ErrProblemMismatch, sol.NumLocations(), ws.data.NumLocations())
	}

	ws.clear()

	used := make([]bool, len(ws.routes))
	for i, sr := range sol.Routes() {
		slot := -1
		for _, r := range ws.routes {
			if !used[r.idx] && r.vehicleType == sr.VehicleType() {
				slot = r.idx
				break
			}
		}
		if slot < 0 {
			return fmt.Errorf("load solution: route %d: %w: no free vehicle of type %d", i+1, ErrProblemMismatch, sr.VehicleType())
		}
		used[slot] = true

		after := ws.routes[slot].start
		for _, c := range sr.Visits() {
			if !ws.data.IsClient(c) {
				return fmt.Errorf("load solution: route %d: %w: client %d", i+1, ErrProblemMismatch, c)
			}
			ws.InsertAfter(NodeID(c), after)
			after = NodeID(c)
		}
	}

	for _, r := range ws.routes {
		ws.Update(r.idx)
	}
	return nil
}

// export builds an immutable solution from the non-empty route slots.
func (ws *Workspace) export() (*domain.Solution, error) {
	routes := make([]domain.Route, 0, len(ws.routes))
	for _, r := range ws.routes {
		if r.Empty() {
			continue
		}
		dr, err := domain.NewRoute(ws.data, r.Visits(ws), r.vehicleType)
		if err != nil {
			return nil, fmt.Errorf("export solution: %w", err)
		}
		routes = append(routes, dr)
	}

	sol, err := domain.NewSolution(ws.data, routes)
	if err != nil {
		return nil, fmt.Errorf("export solution: %w", err)
	}
	return sol, nil
}

func (ws *Workspace) Data() *domain.ProblemData { return ws.data }
func (ws *Workspace) NumRoutes() int            { return len(ws.routes) }
func (ws *Workspace) Route(r int) *Route        { return ws.routes[r] }

// Client returns the location of u; depot sentinels report 0.
func (ws *Workspace) Client(u NodeID) int { return ws.nodes[u].client }

// RouteOf returns the route slot holding u, or -1 when u is unassigned.
func (ws *Workspace) RouteOf(u NodeID) int { return ws.nodes[u].route }

// Position returns the index of u within its route; the start depot is 0.
func (ws *Workspace) Position(u NodeID) int { return ws.nodes[u].pos }

func (ws *Workspace) Next(u NodeID) NodeID { return ws.nodes[u].next }
func (ws *Workspace) Prev(u NodeID) NodeID { return ws.nodes[u].prev }

// IsDepot reports whether u is a depot sentinel.
func (ws *Workspace) IsDepot(u NodeID) bool { return int(u) >= ws.data.NumLocations() }

func (ws *Workspace) IsStartDepot(u NodeID) bool {
	return ws.IsDepot(u) && (int(u)-ws.data.NumLocations())%2 == 0
}

func (ws *Workspace) IsEndDepot(u NodeID) bool {
	return ws.IsDepot(u) && (int(u)-ws.data.NumLocations())%2 == 1
}

// InsertAfter links the detached client node u directly after after.
// Route caches are stale until Update is called.
func (ws *Workspace) InsertAfter(u, after NodeID) {
	next := ws.nodes[after].next
	ws.nodes[u].prev = after
	ws.nodes[u].next = next
	ws.nodes[u].route = ws.nodes[after].route
	ws.nodes[after].next = u
	ws.nodes[next].prev = u
}

// Remove unlinks client node u from its route.
func (ws *Workspace) Remove(u NodeID) {
	n := &ws.nodes[u]
	ws.nodes[n.prev].next = n.next
	ws.nodes[n.next].prev = n.prev
	n.prev, n.next = -1, -1
	n.route = noRoute
}

// Update recomputes positions and the cached prefix, suffix and sector data of route r.
func (ws *Workspace) Update(r int) {
	rt := ws.routes[r]
	rt.nodes = rt.nodes[:0]
	for u := rt.start; ; u = ws.nodes[u].next {
		ws.nodes[u].pos = len(rt.nodes)
		ws.nodes[u].route = r
		rt.nodes = append(rt.nodes, u)
		if u == rt.end {
			break
		}
	}

	size := len(rt.nodes)
	rt.cumDist = resize(rt.cumDist, size)
	rt.cumLoad = resize(rt.cumLoad, size)
	rt.before = resizeTWS(rt.before, size)
	rt.after = resizeTWS(rt.after, size)

	rt.cumDist[0], rt.cumLoad[0] = 0, 0
	rt.before[0] = ws.tws[0]
	for pos := 1; pos < size; pos++ {
		prev, cur := ws.nodes[rt.nodes[pos-1]].client, ws.nodes[rt.nodes[pos]].client
		rt.cumDist[pos] = rt.cumDist[pos-1] + ws.data.Dist(prev, cur)
		rt.cumLoad[pos] = rt.cumLoad[pos-1] + ws.demand(cur)
		rt.before[pos] = merge(ws.dur, rt.before[pos-1], ws.tws[cur])
	}
	rt.after[size-1] = ws.tws[0]
	for pos := size - 2; pos >= 0; pos-- {
		rt.after[pos] = merge(ws.dur, ws.tws[ws.nodes[rt.nodes[pos]].client], rt.after[pos+1])
	}

	rt.distance = rt.cumDist[size-1]
	rt.load = rt.cumLoad[size-1]
	rt.timeWarp = rt.before[size-1].totalTimeWarp()

	rt.sector = circleSector{}
	if size > 2 {
		rt.sector = newSector(ws.angles[ws.nodes[rt.nodes[1]].client])
		for pos := 2; pos < size-1; pos++ {
			rt.sector.extend(ws.angles[ws.nodes[rt.nodes[pos]].client])
		}
	}
}

func (ws *Workspace) demand(loc int) int {
	if loc == 0 {
		return 0
	}
	return ws.data.Client(loc).Demand
}

func resize(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

func resizeTWS(s []tws, n int) []tws {
	if cap(s) < n {
		return make([]tws, n)
	}
	return s[:n]
}

func (r *Route) distBetween(from, to int) int { return r.cumDist[to] - r.cumDist[from] }

func (r *Route) loadBetween(from, to int) int {
	if from == 0 {
		return r.cumLoad[to]
	}
	return r.cumLoad[to] - r.cumLoad[from-1]
}

func (ws *Workspace) twsBetween(r *Route, from, to int) tws {
	switch {
	case from == 0:
		return r.before[to]
	case to == r.last():
		return r.after[from]
	}
	acc := ws.tws[ws.nodes[r.nodes[from]].client]
	for pos := from + 1; pos <= to; pos++ {
		acc = merge(ws.dur, acc, ws.tws[ws.nodes[r.nodes[pos]].client])
	}
	return acc
}
