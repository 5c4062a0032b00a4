package ports

import (
	"context"

	"vrp-search-service/internal/domain"
)

// Port: persistence for the outcome of search runs.
type SolutionStore interface {
	Save(ctx context.Context, rec domain.SolutionRecord) error
	// Unknown run ids wrap domain.ErrNotFound.
	Get(ctx context.Context, runID string) (domain.SolutionRecord, error)
}
