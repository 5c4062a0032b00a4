package localsearch

import (
	"math"

	"vrp-search-service/internal/ports"
)

// SwapStar exchanges one client of each route, reinserting both at their
// best position in the other route rather than in each other's place.
type SwapStar struct{}

func NewSwapStar() *SwapStar { return &SwapStar{} }

func (*SwapStar) Name() string { return "swap-star" }

func (s *SwapStar) TryMove(ws *Workspace, r1, r2 int, cost ports.CostEvaluator) bool {
	route1, route2 := ws.routes[r1], ws.routes[r2]
	if route1.Empty() || route2.Empty() {
		return false
	}

	best := 0
	var bestU, bestV, afterU, afterV NodeID = -1, -1, -1, -1

	for pu := 1; pu <= route1.Size(); pu++ {
		for pv := 1; pv <= route2.Size(); pv++ {
			u, v := route1.nodes[pu], route2.nodes[pv]

			du, au := bestInsert(ws, route2, pv, ws.Client(u), cost)
			dv, av := bestInsert(ws, route1, pu, ws.Client(v), cost)
			if delta := du + dv; delta < best {
				best = delta
				bestU, bestV, afterU, afterV = u, v, au, av
			}
		}
	}

	if best >= 0 {
		return false
	}

	ws.Remove(bestU)
	ws.Remove(bestV)
	ws.InsertAfter(bestU, afterU)
	ws.InsertAfter(bestV, afterV)
	ws.Update(r1)
	ws.Update(r2)
	return true
}

// bestInsert finds the cheapest way to replace the client at position
// removed of r by client c, inserted anywhere in the remaining route. It
// returns the route cost delta and the node c should follow.
func bestInsert(ws *Workspace, r *Route, removed, c int, cost ports.CostEvaluator) (int, NodeID) {
	load := r.load - r.loadBetween(removed, removed) + ws.demand(c)
	tc := ws.tws[c]
	last := r.last()

	best := math.MaxInt
	var after NodeID = -1

	try := func(dist, timeWarp int, at NodeID) {
		if d := routeDelta(r, dist, load, timeWarp, cost); d < best {
			best, after = d, at
		}
	}

	// Insert after position p < removed: [0..p] c [p+1..removed-1] [removed+1..last].
	var mid tws
	hasMid := false
	for p := removed - 1; p >= 0; p-- {
		if p < removed-1 {
			t := ws.tws[ws.Client(r.nodes[p+1])]
			if hasMid {
				mid = merge(ws.dur, t, mid)
			} else {
				mid, hasMid = t, true
			}
		}

		pc := ws.Client(r.nodes[p])
		nc := ws.Client(r.nodes[p+1])
		dist := r.distBetween(0, p) + ws.data.Dist(pc, c)
		acc := merge(ws.dur, r.before[p], tc)
		if hasMid {
			dist += ws.data.Dist(c, nc) + r.distBetween(p+1, removed-1)
			acc = merge(ws.dur, acc, mid)
			dist += ws.data.Dist(ws.Client(r.nodes[removed-1]), ws.Client(r.nodes[removed+1]))
		} else {
			dist += ws.data.Dist(c, ws.Client(r.nodes[removed+1]))
		}
		dist += r.distBetween(removed+1, last)
		acc = merge(ws.dur, acc, r.after[removed+1])
		try(dist, acc.totalTimeWarp(), r.nodes[p])
	}

	// Insert after position p > removed: [0..removed-1] [removed+1..p] c [p+1..last].
	hasMid = false
	for p := removed + 1; p < last; p++ {
		t := ws.tws[ws.Client(r.nodes[p])]
		if hasMid {
			mid = merge(ws.dur, mid, t)
		} else {
			mid, hasMid = t, true
		}

		pc := ws.Client(r.nodes[p])
		dist := r.distBetween(0, removed-1) +
			ws.data.Dist(ws.Client(r.nodes[removed-1]), ws.Client(r.nodes[removed+1])) +
			r.distBetween(removed+1, p) +
			ws.data.Dist(pc, c) +
			ws.data.Dist(c, ws.Client(r.nodes[p+1])) +
			r.distBetween(p+1, last)
		acc := merge(ws.dur, merge(ws.dur, r.before[removed-1], mid), tc)
		acc = merge(ws.dur, acc, r.after[p+1])
		try(dist, acc.totalTimeWarp(), r.nodes[p])
	}

	return best, after
}
