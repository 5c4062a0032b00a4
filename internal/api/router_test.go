package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrp-search-service/internal/adapters/cache"
	"vrp-search-service/internal/adapters/distance"
	"vrp-search-service/internal/adapters/repositories"
	"vrp-search-service/internal/api"
	"vrp-search-service/internal/api/dto"
	"vrp-search-service/internal/config"
	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/platform/metrics"
	"vrp-search-service/internal/services"
)

const lineInstance = `
name: line
depot: {x: 0, y: 0}
clients:
  - {x: 10, y: 0, demand: 1}
  - {x: 20, y: 0, demand: 1}
  - {x: 30, y: 0, demand: 1}
  - {x: 40, y: 0, demand: 1}
vehicle_types:
  - {capacity: 2, num_available: 2}
`

type fakeSolver struct {
	got services.SolveRequest
	rec domain.SolutionRecord
	err error
}

func (f *fakeSolver) Solve(ctx context.Context, req services.SolveRequest) (domain.SolutionRecord, error) {
	f.got = req
	return f.rec, f.err
}

func instanceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "line.yaml"), []byte(lineInstance), 0o644))
	return dir
}

func newServer(t *testing.T, solver *fakeSolver) (*httptest.Server, *cache.MemorySolutionStore) {
	t.Helper()
	store := cache.NewMemorySolutionStore()
	router := api.NewRouter(api.Deps{
		Problems: repositories.NewFileInstanceRepository(instanceDir(t), distance.NewEuclideanProvider()),
		Store:    store,
		Solver:   solver,
		Defaults: config.DefaultSearchConfig(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, &fakeSolver{})

	resp := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = post(t, srv.URL+"/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get("Allow"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv, _ := newServer(t, &fakeSolver{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestListInstances(t *testing.T) {
	srv, _ := newServer(t, &fakeSolver{})

	resp := get(t, srv.URL+"/instances")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.ListInstancesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []dto.InstanceResponse{{ID: "line", Name: "line", NumClients: 4, NumVehicles: 2}}, body.Instances)
}

func TestSolveRejectsBadRequests(t *testing.T) {
	solver := &fakeSolver{}
	srv, _ := newServer(t, solver)

	cases := map[string]string{
		"not json":         `{`,
		"unknown field":    `{"instance_id": "line", "colour": "red"}`,
		"two objects":      `{"instance_id": "line"} {}`,
		"missing instance": `{"seed": 1}`,
		"bad construction": `{"instance_id": "line", "construction": "greedy"}`,
		"bad starts":       `{"instance_id": "line", "starts": 1000}`,
		"bad pair policy":  `{"instance_id": "line", "pair_policy": "best"}`,
		"negative penalty": `{"instance_id": "line", "penalties": {"capacity": -1, "time_warp": 1}}`,
	}
	for name, body := range cases {
		resp := post(t, srv.URL+"/solve", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}

	resp := get(t, srv.URL+"/solve")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSolveMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("solve: load instance: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("solve: %w: starts", config.ErrInvalidConfig), http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		srv, _ := newServer(t, &fakeSolver{err: tc.err})
		resp := post(t, srv.URL+"/solve", `{"instance_id": "line"}`)
		assert.Equal(t, tc.want, resp.StatusCode, tc.err.Error())
	}
}

func TestSolveAppliesOverrides(t *testing.T) {
	solver := &fakeSolver{rec: domain.SolutionRecord{RunID: "run-9", InstanceID: "line", Feasible: true}}
	srv, _ := newServer(t, solver)

	resp := post(t, srv.URL+"/solve", `{
		"instance_id": " line ",
		"seed": 42,
		"starts": 2,
		"construction": "nearest",
		"pair_policy": "until-stable",
		"penalties": {"capacity": 50, "time_warp": 3}
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body dto.SolutionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "run-9", body.RunID)
	assert.True(t, body.Feasible)

	got := solver.got
	assert.Equal(t, "line", got.InstanceID)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, 2, got.Config.Starts)
	assert.Equal(t, "nearest", got.Config.Construction)
	assert.Equal(t, "until-stable", got.Config.PairPolicy)
	assert.Equal(t, config.PenaltyConfig{Capacity: 50, TimeWarp: 3}, got.Config.Penalties)
	assert.Equal(t, config.DefaultSearchConfig().NodeOperators, got.Config.NodeOperators)
}

func TestGetSolution(t *testing.T) {
	srv, store := newServer(t, &fakeSolver{})

	resp := get(t, srv.URL+"/solutions/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	rec := domain.SolutionRecord{
		RunID:      "run-1",
		InstanceID: "line",
		Routes:     []domain.RouteRecord{{VehicleType: 0, Visits: []int{1, 2}}},
		Distance:   40,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(context.Background(), rec))

	resp = get(t, srv.URL+"/solutions/run-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.SolutionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, dto.SolutionFromRecord(rec), body)
}

func TestSolveEndToEnd(t *testing.T) {
	metrics.RegisterDefault()

	store := cache.NewMemorySolutionStore()
	problems := repositories.NewFileInstanceRepository(instanceDir(t), distance.NewEuclideanProvider())
	router := api.NewRouter(api.Deps{
		Problems: problems,
		Store:    store,
		Solver:   services.NewSolver(problems, store),
		Defaults: config.DefaultSearchConfig(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	resp := post(t, srv.URL+"/solve", `{"instance_id": "line", "seed": 3, "penalties": {"capacity": 100, "time_warp": 6}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var solved dto.SolutionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&solved))
	assert.NotEmpty(t, solved.RunID)
	assert.True(t, solved.Feasible)
	// Two out-and-back routes serving {1, 2} and {3, 4} are optimal.
	assert.Equal(t, 120, solved.Distance)

	resp = get(t, srv.URL+"/solutions/"+solved.RunID)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sb strings.Builder
	_, err := io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), `http_requests_total{method="POST",path="/solve",status="201"}`)
	assert.Contains(t, sb.String(), `solve_runs_total{outcome="feasible"}`)
}
