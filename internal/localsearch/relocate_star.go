package localsearch

import "vrp-search-service/internal/ports"

// RelocateStar evaluates every relocation of a single client between two
// routes, in both directions, and applies the best one if it improves.
type RelocateStar struct {
	relocate *Exchange
}

func NewRelocateStar() *RelocateStar {
	return &RelocateStar{relocate: &Exchange{n: 1, m: 0, name: "exchange10"}}
}

func (*RelocateStar) Name() string { return "relocate-star" }

func (rs *RelocateStar) TryMove(ws *Workspace, r1, r2 int, cost ports.CostEvaluator) bool {
	best := 0
	var bestU, bestV NodeID = -1, -1

	consider := func(from, to *Route) {
		for pu := 1; pu <= from.Size(); pu++ {
			u := from.nodes[pu]
			for pv := 0; pv <= to.Size(); pv++ {
				v := to.nodes[pv]
				delta, ok := rs.relocate.evaluate(ws, u, v, cost)
				if ok && delta < best {
					best, bestU, bestV = delta, u, v
				}
			}
		}
	}

	consider(ws.routes[r1], ws.routes[r2])
	consider(ws.routes[r2], ws.routes[r1])

	if best >= 0 {
		return false
	}
	rs.relocate.apply(ws, bestU, bestV)
	return true
}
