package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createInstancesQuery := `
	CREATE TABLE IF NOT EXISTS instances (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		num_clients INTEGER NOT NULL,
		num_vehicles INTEGER NOT NULL,
		document JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createSolutionsQuery := `
	CREATE TABLE IF NOT EXISTS solutions (
		run_id TEXT PRIMARY KEY,
		instance_id TEXT NOT NULL,
		penalised_cost BIGINT NOT NULL,
		feasible BOOLEAN NOT NULL,
		record JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_solutions_instance_created
	ON solutions(instance_id, created_at);
	`

	statements := []string{
		createInstancesQuery,
		createSolutionsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromDir upserts every instance document in dir into the instances
// table and returns how many were written.
func SeedFromDir(ctx context.Context, db *sql.DB, dir string) (int, error) {
	if db == nil {
		return 0, errors.New("seed instances: DB is nil")
	}

	docs, err := readInstanceDir(dir)
	if err != nil {
		return 0, fmt.Errorf("seed instances: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed instances: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertInstanceQuery)
	if err != nil {
		return 0, fmt.Errorf("seed instances: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		info := d.doc.Info(d.id)
		payload, err := json.Marshal(d.doc)
		if err != nil {
			return 0, fmt.Errorf("seed instances: encode %q: %w", d.id, err)
		}
		if _, err := stmt.ExecContext(ctx, info.ID, info.Name, info.NumClients, info.NumVehicles, payload); err != nil {
			return 0, fmt.Errorf("seed instances: insert id=%q: %w", d.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed instances: commit tx: %w", err)
	}

	return len(docs), nil
}
