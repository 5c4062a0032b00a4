package localsearch

import "vrp-search-service/internal/ports"

// NodeOperator tries a move around two nodes. TryMove applies the move and
// updates the affected routes only when it strictly improves the penalised
// cost, and reports whether it did. u is always a routed client; v is a
// routed client or a start depot.
type NodeOperator interface {
	Name() string
	TryMove(ws *Workspace, u, v NodeID, cost ports.CostEvaluator) bool
}

// RouteOperator tries a move between two distinct, non-empty route slots.
type RouteOperator interface {
	Name() string
	TryMove(ws *Workspace, r1, r2 int, cost ports.CostEvaluator) bool
}
