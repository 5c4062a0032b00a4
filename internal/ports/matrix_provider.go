package ports

import (
	"context"

	"vrp-search-service/internal/domain"
)

// Contract for building travel distance and duration matrices between locations.
type MatrixProvider interface {
	// Return square distance and duration matrices over pts, in the order given.
	Matrices(ctx context.Context, pts []domain.Coordinates) (dist, dur domain.Matrix, err error)
}
