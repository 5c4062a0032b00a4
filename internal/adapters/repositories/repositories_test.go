package repositories

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrp-search-service/internal/adapters/distance"
	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/platform/db"
	"vrp-search-service/internal/ports"
)

var (
	_ ports.ProblemRepository = (*FileInstanceRepository)(nil)
	_ ports.ProblemRepository = (*SQLInstanceRepository)(nil)
)

const smallYAML = `
name: small
depot: {x: 0, y: 0, tw_late: 500}
clients:
  - {x: 3, y: 4, demand: 2, service_duration: 1}
  - {x: 6, y: 8, demand: 3, tw_early: 10, tw_late: 40, prize: 7, required: false}
vehicle_types:
  - {capacity: 5, num_available: 2}
`

const smallJSON = `{
  "depot": {"x": 0, "y": 0},
  "clients": [{"x": 1, "y": 0, "demand": 1}],
  "vehicle_types": [{"capacity": 3, "num_available": 1}],
  "distances": [[0, 7], [7, 0]]
}`

func TestParseInstanceDocumentYAML(t *testing.T) {
	doc, err := ParseInstanceDocument(strings.NewReader(smallYAML))
	require.NoError(t, err)

	data, err := doc.ProblemData(context.Background(), distance.NewEuclideanProvider())
	require.NoError(t, err)

	require.Equal(t, 3, data.NumLocations())
	assert.Equal(t, 500, data.Depot().TWLate)
	assert.Equal(t, 5, data.Dist(0, 1))
	assert.Equal(t, 5, data.Duration(1, 2))

	c1, c2 := data.Client(1), data.Client(2)
	assert.True(t, c1.Required)
	assert.Equal(t, OpenHorizon, c1.TWLate)
	assert.False(t, c2.Required)
	assert.Equal(t, 7, c2.Prize)
	assert.Equal(t, 40, c2.TWLate)

	assert.Equal(t, domain.InstanceInfo{ID: "x", Name: "small", NumClients: 2, NumVehicles: 2}, doc.Info("x"))
}

func TestParseInstanceDocumentJSONWithDistances(t *testing.T) {
	doc, err := ParseInstanceDocument(strings.NewReader(smallJSON))
	require.NoError(t, err)

	data, err := doc.ProblemData(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, data.Dist(0, 1))
	assert.Equal(t, 7, data.Duration(1, 0), "distances double as durations")
	assert.Equal(t, "x", doc.Info("x").Name)
}

func TestParseInstanceDocumentRejects(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"no clients":     `{depot: {x: 0, y: 0}, vehicle_types: [{capacity: 1, num_available: 1}]}`,
		"no vehicles":    `{depot: {x: 0, y: 0}, clients: [{x: 1, y: 1}]}`,
		"zero vehicles":  `{depot: {x: 0, y: 0}, clients: [{x: 1, y: 1}], vehicle_types: [{capacity: 1, num_available: 0}]}`,
		"negative":       `{depot: {x: 0, y: 0}, clients: [{x: 1, y: 1, demand: -1}], vehicle_types: [{capacity: 1, num_available: 1}]}`,
		"unknown field":  `{depot: {x: 0, y: 0}, clients: [{x: 1, y: 1}], vehicle_types: [{capacity: 1, num_available: 1}], colour: red}`,
		"only durations": `{depot: {x: 0, y: 0}, clients: [{x: 1, y: 1}], vehicle_types: [{capacity: 1, num_available: 1}], durations: [[0, 1], [1, 0]]}`,
	}
	for name, src := range cases {
		_, err := ParseInstanceDocument(strings.NewReader(src))
		assert.ErrorIs(t, err, domain.ErrInvalidProblem, name)
	}
}

func TestProblemDataNeedsMatrices(t *testing.T) {
	doc, err := ParseInstanceDocument(strings.NewReader(smallYAML))
	require.NoError(t, err)

	_, err = doc.ProblemData(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidProblem)

	doc.Distances = [][]int{{0, 1}, {1, 0}}
	_, err = doc.ProblemData(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidProblem, "matrix size must match locations")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileInstanceRepository(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-small.yaml", smallYAML)
	writeFile(t, dir, "a-tiny.json", smallJSON)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	repo := NewFileInstanceRepository(dir, distance.NewEuclideanProvider())
	ctx := context.Background()

	infos, err := repo.ListInstances(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.InstanceInfo{
		{ID: "a-tiny", Name: "a-tiny", NumClients: 1, NumVehicles: 1},
		{ID: "b-small", Name: "small", NumClients: 2, NumVehicles: 2},
	}, infos)

	data, err := repo.GetInstance(ctx, "b-small")
	require.NoError(t, err)
	assert.Equal(t, 2, data.NumClients())

	for _, id := range []string{"missing", "", "../b-small", "nested/x"} {
		_, err = repo.GetInstance(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
}

func TestFileInstanceRepositoryDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.yaml", smallYAML)
	writeFile(t, dir, "x.json", smallJSON)

	_, err := NewFileInstanceRepository(dir, nil).ListInstances(context.Background())
	require.Error(t, err)
}

// Postgres integration test; requires DATABASE_URL.
func TestSQLInstanceRepositoryRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	ctx := context.Background()

	conn, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(ctx, conn))

	dir := t.TempDir()
	writeFile(t, dir, "it-small.yaml", smallYAML)
	n, err := SeedFromDir(ctx, conn, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	repo := NewSQLInstanceRepository(conn, distance.NewEuclideanProvider())
	infos, err := repo.ListInstances(ctx)
	require.NoError(t, err)
	assert.Contains(t, infos, domain.InstanceInfo{ID: "it-small", Name: "small", NumClients: 2, NumVehicles: 2})

	data, err := repo.GetInstance(ctx, "it-small")
	require.NoError(t, err)
	assert.Equal(t, 5, data.Dist(0, 1))

	_, err = repo.GetInstance(ctx, "it-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShippedInstancesLoad(t *testing.T) {
	repo := NewFileInstanceRepository(filepath.Join("..", "..", "..", "data", "instances"), distance.NewEuclideanProvider())

	infos, err := repo.ListInstances(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, infos)

	for _, info := range infos {
		data, err := repo.GetInstance(context.Background(), info.ID)
		require.NoError(t, err, info.ID)
		assert.Equal(t, info.NumClients, data.NumClients(), info.ID)
		assert.Equal(t, info.NumVehicles, data.NumVehicles(), info.ID)
	}
}
