package distance

import (
	"context"
	"math"

	"vrp-search-service/internal/domain"
)

// EuclideanProvider derives matrices from planar coordinates without any
// external service. Distances are rounded Euclidean lengths; durations are
// distances divided by Speed and rounded, or equal to distances when Speed
// is zero.
type EuclideanProvider struct {
	Speed float64
}

func NewEuclideanProvider() *EuclideanProvider {
	return &EuclideanProvider{}
}

func (p *EuclideanProvider) Matrices(ctx context.Context, pts []domain.Coordinates) (domain.Matrix, domain.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	dist := domain.EuclideanMatrix(pts)
	if p.Speed <= 0 {
		dur := domain.NewMatrix(len(pts))
		for i := range dist {
			copy(dur[i], dist[i])
		}
		return dist, dur, nil
	}

	dur := domain.NewMatrix(len(pts))
	for i, a := range pts {
		for j, b := range pts {
			if i == j {
				continue
			}
			dur[i][j] = int(math.Round(math.Hypot(a.X-b.X, a.Y-b.Y) / p.Speed))
		}
	}
	return dist, dur, nil
}
