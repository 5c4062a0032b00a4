package ports

import (
	"context"

	"vrp-search-service/internal/domain"
)

// Port: a boundary for retrieving routing instances from a data source.
type ProblemRepository interface {
	// Summaries of every stored instance, ordered by id.
	ListInstances(ctx context.Context) ([]domain.InstanceInfo, error)
	// Full problem data for one instance. Unknown ids wrap domain.ErrNotFound.
	GetInstance(ctx context.Context, id string) (*domain.ProblemData, error)
}
