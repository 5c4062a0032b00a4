package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/platform/obs"
	"vrp-search-service/internal/ports"
)

const upsertInstanceQuery = `
	INSERT INTO instances (id, name, num_clients, num_vehicles, document)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		num_clients = EXCLUDED.num_clients,
		num_vehicles = EXCLUDED.num_vehicles,
		document = EXCLUDED.document,
		updated_at = now();
	`

// Postgres-backed implementation of the ProblemRepository port. Documents
// are stored as JSONB; matrices missing from a document are requested from
// Matrices on every load.
type SQLInstanceRepository struct {
	DB       *sql.DB
	Matrices ports.MatrixProvider
}

func NewSQLInstanceRepository(db *sql.DB, matrices ports.MatrixProvider) *SQLInstanceRepository {
	return &SQLInstanceRepository{DB: db, Matrices: matrices}
}

// Return summaries of all stored instances.
func (s *SQLInstanceRepository) ListInstances(ctx context.Context) (_ []domain.InstanceInfo, err error) {
	defer obs.Time(ctx, "instances.sql.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql instance repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		num_clients,
		num_vehicles
	FROM instances
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list instances: query instances table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.InstanceInfo, 0, 16)
	for rows.Next() {
		var info domain.InstanceInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.NumClients, &info.NumVehicles); err != nil {
			return nil, fmt.Errorf("list instances: scan row: %w", err)
		}
		out = append(out, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list instances: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLInstanceRepository) GetInstance(ctx context.Context, id string) (_ *domain.ProblemData, err error) {
	defer obs.Time(ctx, "instances.sql.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql instance repository: DB is nil")
	}

	var payload []byte
	err = s.DB.QueryRowContext(ctx, `SELECT document FROM instances WHERE id = $1;`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get instance %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get instance %q: query: %w", id, err)
	}

	var doc InstanceDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("get instance %q: decode document: %w", id, err)
	}

	data, err := doc.ProblemData(ctx, s.Matrices)
	if err != nil {
		return nil, fmt.Errorf("get instance %q: %w", id, err)
	}
	return data, nil
}

// SaveInstance inserts or replaces one instance document.
func (s *SQLInstanceRepository) SaveInstance(ctx context.Context, id string, doc InstanceDocument) error {
	if s.DB == nil {
		return errors.New("sql instance repository: DB is nil")
	}
	if !validInstanceID(id) {
		return fmt.Errorf("save instance: invalid id %q", id)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("save instance %q: %w", id, err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save instance %q: encode: %w", id, err)
	}

	info := doc.Info(id)
	if _, err := s.DB.ExecContext(ctx, upsertInstanceQuery, info.ID, info.Name, info.NumClients, info.NumVehicles, payload); err != nil {
		return fmt.Errorf("save instance %q: %w", id, err)
	}
	return nil
}
