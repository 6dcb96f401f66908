//go:build basic

// Package integration contains integration tests for modelfeed.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestModelfeedWithSQLite runs the full stats/stream/status/clear cycle
// against an SQLite-backed store.
func TestModelfeedWithSQLite(t *testing.T) {
	dir := writeFixtureWorkspace(t, "sqlite", filepath.Join(t.TempDir(), "store.db"))

	// Resolve stats from the source file
	out, err := runModelfeedCommand(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "loss-run-1")

	// Stream the model; records come out as JSON lines
	out, err = runModelfeedCommand(t, dir, "stream", "loss-run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, `"model_id":"loss-run-1"`))

	// Second stream run replays from the store with identical output
	replayed, err := runModelfeedCommand(t, dir, "stream", "loss-run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(replayed, `"model_id":"loss-run-1"`))

	// Store status reflects the cached entries
	out, err = runModelfeedCommand(t, dir, "store", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")

	// Clear wipes the store
	out, err = runModelfeedCommand(t, dir, "store", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Store cleared successfully.")
}

// TestModelfeedStatsJSONOutput checks the JSON output mode end to end.
func TestModelfeedStatsJSONOutput(t *testing.T) {
	dir := writeFixtureWorkspace(t, "sqlite", filepath.Join(t.TempDir(), "store.db"))

	out, err := runModelfeedCommand(t, dir, "stats", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "loss-run-1"`)
	assert.Contains(t, out, `"min": 0.39`)
	assert.Contains(t, out, `"max": 0.52`)
}

// TestModelfeedUnknownModel verifies the CLI rejects undeclared model ids.
func TestModelfeedUnknownModel(t *testing.T) {
	dir := writeFixtureWorkspace(t, "sqlite", filepath.Join(t.TempDir(), "store.db"))

	_, err := runModelfeedCommand(t, dir, "stream", "no-such-model")
	require.Error(t, err)
}
