package localsearch

import "vrp-search-service/internal/ports"

// TwoOpt exchanges the route tails after u and v when they are in different
// routes, and reverses the visits between them when they share a route.
type TwoOpt struct{}

func NewTwoOpt() *TwoOpt { return &TwoOpt{} }

func (*TwoOpt) Name() string { return "two-opt" }

func (t *TwoOpt) TryMove(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) bool {
	if ws.RouteOf(u) == noRoute || ws.RouteOf(v) == noRoute || ws.IsEndDepot(u) || ws.IsEndDepot(v) {
		return false
	}

	if ws.RouteOf(u) != ws.RouteOf(v) {
		delta, ok := t.evalBetween(ws, u, v, cost)
		if !ok || delta >= 0 {
			return false
		}
		t.applyBetween(ws, u, v)
		return true
	}

	if ws.Position(u) > ws.Position(v) {
		u, v = v, u
	}
	if ws.Position(u)+1 >= ws.Position(v) {
		return false
	}
	if t.evalWithin(ws, u, v, cost) >= 0 {
		return false
	}
	t.applyWithin(ws, u, v)
	return true
}

func (*TwoOpt) evalBetween(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) (int, bool) {
	ru, rv := ws.routes[ws.RouteOf(u)], ws.routes[ws.RouteOf(v)]
	pu, pv := ws.Position(u), ws.Position(v)

	// Two empty tails make the move a no-op.
	if pu == ru.Size() && pv == rv.Size() {
		return 0, false
	}

	du := ws.propose(segment{ru, 0, pu}, segment{rv, pv + 1, rv.last()}).delta(ru, cost)
	dv := ws.propose(segment{rv, 0, pv}, segment{ru, pu + 1, ru.last()}).delta(rv, cost)
	return du + dv, true
}

func (*TwoOpt) applyBetween(ws *Workspace, u, v NodeID) {
	ru, rv := ws.RouteOf(u), ws.RouteOf(v)
	tailU := tail(ws, u)
	tailV := tail(ws, v)
	for _, x := range tailU {
		ws.Remove(x)
	}
	for _, x := range tailV {
		ws.Remove(x)
	}
	insertChain(ws, tailV, u)
	insertChain(ws, tailU, v)
	ws.Update(ru)
	ws.Update(rv)
}

// tail returns the clients after u up to the end depot.
func tail(ws *Workspace, u NodeID) []NodeID {
	var out []NodeID
	for x := ws.Next(u); !ws.IsDepot(x); x = ws.Next(x) {
		out = append(out, x)
	}
	return out
}

// evalWithin prices reversing positions pu+1..pv.
func (*TwoOpt) evalWithin(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) int {
	r := ws.routes[ws.RouteOf(u)]
	pu, pv := ws.Position(u), ws.Position(v)

	dist := r.distBetween(0, pu)
	acc := r.before[pu]
	prev := ws.Client(u)
	for pos := pv; pos > pu; pos-- {
		c := ws.Client(r.nodes[pos])
		dist += ws.data.Dist(prev, c)
		acc = merge(ws.dur, acc, ws.tws[c])
		prev = c
	}
	next := ws.Client(r.nodes[pv+1])
	dist += ws.data.Dist(prev, next) + r.distBetween(pv+1, r.last())
	acc = merge(ws.dur, acc, r.after[pv+1])

	return routeDelta(r, dist, r.load, acc.totalTimeWarp(), cost)
}

func (*TwoOpt) applyWithin(ws *Workspace, u, v NodeID) {
	r := ws.RouteOf(u)
	seg := make([]NodeID, 0, ws.Position(v)-ws.Position(u))
	for x := ws.Next(u); ; x = ws.Next(x) {
		seg = append(seg, x)
		if x == v {
			break
		}
	}
	for _, x := range seg {
		ws.Remove(x)
	}
	for i, j := 0, len(seg)-1; i < j; i, j = i+1, j-1 {
		seg[i], seg[j] = seg[j], seg[i]
	}
	insertChain(ws, seg, u)
	ws.Update(r)
}
