package localsearch

import (
	"fmt"

	"vrp-search-service/internal/ports"
)

// Exchange moves the N consecutive clients starting at u to after v when
// M == 0, and swaps them with the M consecutive clients starting at v
// otherwise. (1, 0) is relocate and (1, 1) is swap.
type Exchange struct {
	n, m int
	name string
}

// NewExchange returns the (n, m)-exchange operator. n must be positive and m
// must not exceed n.
func NewExchange(n, m int) (*Exchange, error) {
	if n <= 0 || m < 0 || m > n {
		return nil, fmt.Errorf("new exchange: invalid segment lengths (%d, %d)", n, m)
	}
	return &Exchange{n: n, m: m, name: fmt.Sprintf("exchange%d%d", n, m)}, nil
}

func (e *Exchange) Name() string { return e.name }

func (e *Exchange) TryMove(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) bool {
	delta, ok := e.evaluate(ws, u, v, cost)
	if !ok || delta >= 0 {
		return false
	}
	e.apply(ws, u, v)
	return true
}

// runsIntoDepot reports whether the segment of length k at u is not made of
// k clients of a single route.
func runsIntoDepot(ws *Workspace, u NodeID, k int) bool {
	if ws.IsDepot(u) {
		return true
	}
	r := ws.routes[ws.RouteOf(u)]
	return ws.Position(u)+k-1 > r.Size()
}

func (e *Exchange) evaluate(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) (int, bool) {
	if ws.RouteOf(u) == noRoute || ws.RouteOf(v) == noRoute || runsIntoDepot(ws, u, e.n) {
		return 0, false
	}
	if e.m > 0 && runsIntoDepot(ws, v, e.m) {
		return 0, false
	}
	if e.m == 0 && ws.IsEndDepot(v) {
		return 0, false
	}
	if e.n == e.m && ws.Client(u) >= ws.Client(v) {
		return 0, false
	}

	if e.m == 0 {
		return e.evalRelocate(ws, u, v, cost)
	}
	return e.evalSwap(ws, u, v, cost)
}

func (e *Exchange) evalRelocate(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) (int, bool) {
	ru, rv := ws.routes[ws.RouteOf(u)], ws.routes[ws.RouteOf(v)]
	pu, pv := ws.Position(u), ws.Position(v)
	useg := segment{ru, pu, pu + e.n - 1}

	if ru != rv {
		du := ws.propose(segment{ru, 0, pu - 1}, segment{ru, pu + e.n, ru.last()}).delta(ru, cost)
		dv := ws.propose(segment{rv, 0, pv}, useg, segment{rv, pv + 1, rv.last()}).delta(rv, cost)
		return du + dv, true
	}

	// Inserting after the predecessor or inside the segment changes nothing.
	if pv >= pu-1 && pv <= pu+e.n-1 {
		return 0, false
	}

	var p proposal
	if pu < pv {
		p = ws.propose(segment{ru, 0, pu - 1}, segment{ru, pu + e.n, pv}, useg, segment{ru, pv + 1, ru.last()})
	} else {
		p = ws.propose(segment{ru, 0, pv}, useg, segment{ru, pv + 1, pu - 1}, segment{ru, pu + e.n, ru.last()})
	}
	return p.delta(ru, cost), true
}

func (e *Exchange) evalSwap(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) (int, bool) {
	ru, rv := ws.routes[ws.RouteOf(u)], ws.routes[ws.RouteOf(v)]
	pu, pv := ws.Position(u), ws.Position(v)
	useg := segment{ru, pu, pu + e.n - 1}
	vseg := segment{rv, pv, pv + e.m - 1}

	if ru != rv {
		du := ws.propose(segment{ru, 0, pu - 1}, vseg, segment{ru, pu + e.n, ru.last()}).delta(ru, cost)
		dv := ws.propose(segment{rv, 0, pv - 1}, useg, segment{rv, pv + e.m, rv.last()}).delta(rv, cost)
		return du + dv, true
	}

	// Overlapping or adjacent segments are not swapped.
	if pu <= pv+e.m && pv <= pu+e.n {
		return 0, false
	}

	var p proposal
	if pu < pv {
		p = ws.propose(segment{ru, 0, pu - 1}, vseg, segment{ru, pu + e.n, pv - 1}, useg, segment{ru, pv + e.m, ru.last()})
	} else {
		p = ws.propose(segment{ru, 0, pv - 1}, useg, segment{ru, pv + e.m, pu - 1}, vseg, segment{ru, pu + e.n, ru.last()})
	}
	return p.delta(ru, cost), true
}

func collect(ws *Workspace, u NodeID, k int) []NodeID {
	seg := make([]NodeID, 0, k)
	for i := 0; i < k; i++ {
		seg = append(seg, u)
		u = ws.Next(u)
	}
	return seg
}

func insertChain(ws *Workspace, seg []NodeID, after NodeID) {
	for _, x := range seg {
		ws.InsertAfter(x, after)
		after = x
	}
}

func (e *Exchange) apply(ws *Workspace, u, v NodeID) {
	ru, rv := ws.RouteOf(u), ws.RouteOf(v)
	useg := collect(ws, u, e.n)

	if e.m == 0 {
		for _, x := range useg {
			ws.Remove(x)
		}
		insertChain(ws, useg, v)
	} else {
		vseg := collect(ws, v, e.m)
		anchorU, anchorV := ws.Prev(useg[0]), ws.Prev(vseg[0])
		for _, x := range useg {
			ws.Remove(x)
		}
		for _, x := range vseg {
			ws.Remove(x)
		}
		insertChain(ws, vseg, anchorU)
		insertChain(ws, useg, anchorV)
	}

	ws.Update(ru)
	if rv != ru {
		ws.Update(rv)
	}
}
