package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

const strictPenalties = `
penalties: {capacity: 100, time_warp: 6}
starts: 2
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSolveCommand(t *testing.T) {
	dir := t.TempDir()
	instance := filepath.Join(dir, "line.yaml")
	cfgPath := filepath.Join(dir, "search.yaml")
	require.NoError(t, os.WriteFile(instance, []byte(lineInstance), 0o644))
	require.NoError(t, os.WriteFile(cfgPath, []byte(strictPenalties), 0o644))

	out, err := run(t, "solve", "--instance", instance, "--config", cfgPath, "--seed", "5", "--construction", "nearest")
	require.NoError(t, err)

	assert.Contains(t, out, "Route #1: 1 2\n")
	assert.Contains(t, out, "Route #2: 3 4\n")
	assert.Contains(t, out, "distance=120 excess_load=0 time_warp=0 uncollected_prizes=0\n")
	assert.Contains(t, out, "penalised_cost=120 feasible=true")
}

func TestSolveCommandErrors(t *testing.T) {
	_, err := run(t, "solve")
	require.Error(t, err, "instance flag is required")

	_, err = run(t, "solve", "--instance", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	dir := t.TempDir()
	instance := filepath.Join(dir, "line.yaml")
	require.NoError(t, os.WriteFile(instance, []byte(lineInstance), 0o644))
	_, err = run(t, "solve", "--instance", instance, "--construction", "greedy")
	require.Error(t, err)
}
