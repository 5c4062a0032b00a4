package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"vrp-search-service/internal/domain"
)

// MemorySolutionStore keeps records in process memory. Safe for concurrent use.
type MemorySolutionStore struct {
	mu      sync.RWMutex
	records map[string]domain.SolutionRecord
}

func NewMemorySolutionStore() *MemorySolutionStore {
	return &MemorySolutionStore{records: make(map[string]domain.SolutionRecord)}
}

func (m *MemorySolutionStore) Save(ctx context.Context, rec domain.SolutionRecord) error {
	if rec.RunID == "" {
		return errors.New("save solution: run id must not be empty")
	}

	rec.Routes = cloneRoutes(rec.Routes)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.RunID] = rec
	return nil
}

func (m *MemorySolutionStore) Get(ctx context.Context, runID string) (domain.SolutionRecord, error) {
	m.mu.RLock()
	rec, ok := m.records[runID]
	m.mu.RUnlock()

	if !ok {
		return domain.SolutionRecord{}, fmt.Errorf("get solution %s: %w", runID, domain.ErrNotFound)
	}
	rec.Routes = cloneRoutes(rec.Routes)
	return rec, nil
}

func cloneRoutes(routes []domain.RouteRecord) []domain.RouteRecord {
	out := make([]domain.RouteRecord, len(routes))
	for i, r := range routes {
		out[i] = domain.RouteRecord{VehicleType: r.VehicleType, Visits: append([]int(nil), r.Visits...)}
	}
	return out
}
