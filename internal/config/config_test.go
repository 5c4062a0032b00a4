package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallback(t *testing.T) {
	t.Setenv("VRP_TEST_KEY", "  ")
	assert.Equal(t, "fallback", Get("VRP_TEST_KEY", "fallback"))

	t.Setenv("VRP_TEST_KEY", "value")
	assert.Equal(t, "value", Get("VRP_TEST_KEY", "fallback"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SOLUTION_STORE", "")
	t.Setenv("SOLUTION_TTL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.SolutionStore)
	assert.Equal(t, 24*time.Hour, cfg.SolutionTTL)
}

func TestFromEnvRejectsIncompleteBackends(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SOLUTION_TTL", "")

	for _, store := range []string{StorePostgres, StoreRedis, "mongo"} {
		t.Setenv("SOLUTION_STORE", store)
		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrInvalidConfig, store)
	}

	t.Setenv("SOLUTION_STORE", StoreMemory)
	t.Setenv("SOLUTION_TTL", "soon")
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseSearchConfigOverlaysDefaults(t *testing.T) {
	doc := `
penalties:
  capacity: 50
node_operators: [relocate, two-opt]
route_operators: []
pair_policy: until-stable
starts: 8
`
	cfg, err := ParseSearchConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Penalties.Capacity)
	assert.Equal(t, 6, cfg.Penalties.TimeWarp)
	assert.Equal(t, []string{"relocate", "two-opt"}, cfg.NodeOperators)
	assert.Empty(t, cfg.RouteOperators)
	assert.Equal(t, "until-stable", cfg.PairPolicy)
	assert.Equal(t, 8, cfg.Starts)
	assert.Equal(t, 40, cfg.Neighbourhood.NumNeighbours)
}

func TestParseSearchConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown operator": "node_operators: [teleport]\n",
		"no node operator": "node_operators: []\n",
		"negative penalty": "penalties: {capacity: -1}\n",
		"bad tolerance":    "overlap_tolerance_degrees: 400\n",
		"unknown key":      "temperature: 3\n",
		"bad policy":       "pair_policy: best\n",
		"zero starts":      "starts: 0\n",
	}
	for name, doc := range cases {
		_, err := ParseSearchConfig(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestLoadSearchConfig(t *testing.T) {
	cfg, err := LoadSearchConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchConfig(), cfg)
	require.NoError(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte("construction: nearest\n"), 0o600))
	cfg, err = LoadSearchConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "nearest", cfg.Construction)

	_, err = LoadSearchConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestShippedSearchConfigIsValid(t *testing.T) {
	cfg, err := LoadSearchConfig(filepath.Join("..", "..", "configs", "search.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Starts)
	assert.Equal(t, DefaultSearchConfig().NodeOperators, cfg.NodeOperators)
}
