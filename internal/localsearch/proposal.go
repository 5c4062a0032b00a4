package localsearch

import "vrp-search-service/internal/ports"

// segment is the inclusive position range [from, to] of a route. Ranges
// with from > to are empty and skipped.
type segment struct {
	route *Route
	from  int
	to    int
}

func (s segment) empty() bool { return s.from > s.to }

// proposal describes a candidate visit sequence as a concatenation of
// existing route ranges, so it can be evaluated without editing the workspace.
type proposal struct {
	ws   *Workspace
	segs []segment
}

func (ws *Workspace) propose(segs ...segment) proposal {
	return proposal{ws: ws, segs: segs}
}

// evaluate returns distance, load and time warp of the concatenated sequence.
func (p proposal) evaluate() (dist, load, timeWarp int) {
	ws := p.ws
	var (
		acc     tws
		started bool
		lastLoc int
	)
	for _, s := range p.segs {
		if s.empty() {
			continue
		}
		firstLoc := ws.Client(s.route.nodes[s.from])
		t := ws.twsBetween(s.route, s.from, s.to)
		if started {
			dist += ws.data.Dist(lastLoc, firstLoc)
			acc = merge(ws.dur, acc, t)
		} else {
			acc = t
			started = true
		}
		dist += s.route.distBetween(s.from, s.to)
		load += s.route.loadBetween(s.from, s.to)
		lastLoc = ws.Client(s.route.nodes[s.to])
	}
	return dist, load, acc.totalTimeWarp()
}

// delta is the change in penalised cost when route r is replaced by p.
func (p proposal) delta(r *Route, cost ports.CostEvaluator) int {
	dist, load, tw := p.evaluate()
	return routeDelta(r, dist, load, tw, cost)
}

func routeDelta(r *Route, dist, load, timeWarp int, cost ports.CostEvaluator) int {
	return dist - r.distance +
		cost.LoadPenalty(load, r.capacity) - cost.LoadPenalty(r.load, r.capacity) +
		cost.TWPenalty(timeWarp) - cost.TWPenalty(r.timeWarp)
}
