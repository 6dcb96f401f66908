package metricstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteStore creates a store backed by a throwaway SQLite file.
func newSQLiteStore(t *testing.T) contract.MetricStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "store.db")
	store, err := NewMetricStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStatsRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	rec := schema.StatsRecord{
		MetricKey:  "abc123",
		ModelID:    "loss-run-1",
		SourceFile: "run1.csv",
		MetricName: "loss",
		Stats: schema.MetricStats{
			Min: schema.Float64Ptr(0.02),
			Max: schema.Float64Ptr(1.75),
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.PutStats(rec))

	got, err := store.GetStats("abc123")
	require.NoError(t, err)
	assert.Equal(t, "loss-run-1", got.ModelID)
	assert.Equal(t, "run1.csv", got.SourceFile)
	assert.Equal(t, "loss", got.MetricName)
	require.True(t, got.Stats.Complete())
	assert.Equal(t, 0.02, *got.Stats.Min)
	assert.Equal(t, 1.75, *got.Stats.Max)
}

func TestStatsNotFound(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.GetStats("missing")
	assert.ErrorIs(t, err, contract.ErrStatsNotFound)
}

func TestStatsPartialBounds(t *testing.T) {
	store := newSQLiteStore(t)

	rec := schema.StatsRecord{
		MetricKey:  "partial",
		ModelID:    "m1",
		SourceFile: "f.csv",
		MetricName: "acc",
		Stats:      schema.MetricStats{Min: schema.Float64Ptr(0.1)},
	}
	require.NoError(t, store.PutStats(rec))

	got, err := store.GetStats("partial")
	require.NoError(t, err)
	assert.False(t, got.Stats.Complete())
	assert.Nil(t, got.Stats.Max)
}

func TestStatsUpsertReplaces(t *testing.T) {
	store := newSQLiteStore(t)

	rec := schema.StatsRecord{
		MetricKey: "k", ModelID: "m1", SourceFile: "f.csv", MetricName: "loss",
		Stats: schema.MetricStats{Min: schema.Float64Ptr(1), Max: schema.Float64Ptr(2)},
	}
	require.NoError(t, store.PutStats(rec))

	rec.Stats.Max = schema.Float64Ptr(9)
	require.NoError(t, store.PutStats(rec))

	got, err := store.GetStats("k")
	require.NoError(t, err)
	assert.Equal(t, 9.0, *got.Stats.Max)
}

func TestDataRoundTripPreservesOrder(t *testing.T) {
	store := newSQLiteStore(t)

	rows := []schema.DataRecord{
		{Seq: 0, Timestamp: "2024-03-01T00:00:00Z", RawValue: "1.5", DisplayValue: 1.5},
		{Seq: 1, Timestamp: "2024-03-01T00:01:00Z", RawValue: "1.2", DisplayValue: 1.2},
		{Seq: 2, Timestamp: "2024-03-01T00:02:00Z", RawValue: "0.9", DisplayValue: 0.9},
	}
	require.NoError(t, store.PutData("key1", rows))

	got, err := store.GetData("key1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, rec := range got {
		assert.Equal(t, i, rec.Seq)
		assert.Equal(t, rows[i].Timestamp, rec.Timestamp)
		assert.Equal(t, rows[i].RawValue, rec.RawValue)
		assert.Equal(t, rows[i].DisplayValue, rec.DisplayValue)
		assert.Equal(t, "key1", rec.MetricKey)
	}
}

func TestDataEmptyKeyIsNotAnError(t *testing.T) {
	store := newSQLiteStore(t)

	got, err := store.GetData("nothing-here")
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestDataIsolatedByKey(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.PutData("a", []schema.DataRecord{{Seq: 0, Timestamp: "2024-01-01T00:00:00Z", RawValue: "1", DisplayValue: 1}}))
	require.NoError(t, store.PutData("b", []schema.DataRecord{
		{Seq: 0, Timestamp: "2024-01-01T00:00:00Z", RawValue: "2", DisplayValue: 2},
		{Seq: 1, Timestamp: "2024-01-01T00:01:00Z", RawValue: "3", DisplayValue: 3},
	}))

	gotA, err := store.GetData("a")
	require.NoError(t, err)
	assert.Len(t, gotA, 1)

	gotB, err := store.GetData("b")
	require.NoError(t, err)
	assert.Len(t, gotB, 2)
}

func TestNoneBackendIsNoop(t *testing.T) {
	store, err := NewMetricStore(schema.NoneBackend, "")
	require.NoError(t, err)

	_, err = store.GetStats("any")
	assert.ErrorIs(t, err, contract.ErrStatsNotFound)

	assert.NoError(t, store.PutStats(schema.StatsRecord{MetricKey: "any"}))

	rows, err := store.GetData("any")
	assert.NoError(t, err)
	assert.Empty(t, rows)

	assert.NoError(t, store.PutData("any", []schema.DataRecord{{Seq: 0}}))

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestGetStatusCounts(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.PutStats(schema.StatsRecord{
		MetricKey: "k1", ModelID: "m1", SourceFile: "f.csv", MetricName: "loss",
		Stats: schema.MetricStats{Min: schema.Float64Ptr(0), Max: schema.Float64Ptr(1)},
	}))
	require.NoError(t, store.PutData("k1", []schema.DataRecord{
		{Seq: 0, Timestamp: "2024-01-01T00:00:00Z", RawValue: "0.5", DisplayValue: 0.5},
		{Seq: 1, Timestamp: "2024-01-01T00:01:00Z", RawValue: "0.6", DisplayValue: 0.6},
	}))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.Equal(t, 1, status.StatsEntries)
	assert.Equal(t, 2, status.DataRows)
	assert.False(t, status.LastWrite.IsZero())
}

func TestClearStoreSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.db")
	store, err := NewMetricStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.PutStats(schema.StatsRecord{
		MetricKey: "k", ModelID: "m", SourceFile: "f", MetricName: "x",
	}))
	require.NoError(t, store.Close())

	require.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, ""))

	// Clearing an already-missing file is fine.
	assert.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, ""))
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := NewMetricStore(schema.DatabaseBackend("mongodb"), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store backend")
}
