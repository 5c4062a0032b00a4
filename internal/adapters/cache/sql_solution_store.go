package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/platform/obs"
)

// SQLSolutionStore is a Postgres-backed store for solution records.
type SQLSolutionStore struct {
	DB *sql.DB
}

func NewSQLSolutionStore(db *sql.DB) *SQLSolutionStore {
	return &SQLSolutionStore{DB: db}
}

// Save inserts or replaces the record for rec.RunID.
func (s *SQLSolutionStore) Save(ctx context.Context, rec domain.SolutionRecord) (err error) {
	defer obs.Time(ctx, "solutions.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("solution store: db is nil")
	}

	if strings.TrimSpace(rec.RunID) == "" {
		return errors.New("save solution: run id must not be empty")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save solution %s: encode: %w", rec.RunID, err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO solutions (run_id, instance_id, penalised_cost, feasible, record, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (run_id) DO UPDATE
	SET instance_id = EXCLUDED.instance_id,
		penalised_cost = EXCLUDED.penalised_cost,
		feasible = EXCLUDED.feasible,
		record = EXCLUDED.record,
		created_at = EXCLUDED.created_at;
	`, rec.RunID, rec.InstanceID, rec.PenalisedCost, rec.Feasible, payload, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("save solution %s: %w", rec.RunID, err)
	}

	return nil
}

// Get fetches the record stored for runID.
func (s *SQLSolutionStore) Get(ctx context.Context, runID string) (_ domain.SolutionRecord, err error) {
	defer obs.Time(ctx, "solutions.sql.Get")(&err)

	if s.DB == nil {
		return domain.SolutionRecord{}, errors.New("solution store: db is nil")
	}

	var payload []byte
	err = s.DB.QueryRowContext(ctx, `SELECT record FROM solutions WHERE run_id = $1;`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SolutionRecord{}, fmt.Errorf("get solution %s: %w", runID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.SolutionRecord{}, fmt.Errorf("get solution %s: query solutions table: %w", runID, err)
	}

	var rec domain.SolutionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.SolutionRecord{}, fmt.Errorf("get solution %s: decode: %w", runID, err)
	}

	return rec, nil
}
