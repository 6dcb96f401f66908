package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/metricstore"
	"github.com/mfeldman/modelfeed/schema"
)

func TestExecuteExportRequiresOutputFile(t *testing.T) {
	err := ExecuteExport(nil, &metricstore.MockStoreManager{}, "")
	assert.ErrorContains(t, err, "--output-file is required")
}

func TestExecuteExportEmptyStore(t *testing.T) {
	mgr := &metricstore.MockStoreManager{}
	store := &metricstore.MockMetricStore{}
	mgr.On("GetMetricStore").Return(store)
	store.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true}, nil)

	err := ExecuteExport(nil, mgr, filepath.Join(t.TempDir(), "out"))
	assert.ErrorContains(t, err, "no cached data")
}

func TestExecuteExportWritesParquetFiles(t *testing.T) {
	model := schema.Model{ID: "m1", SourceFile: "train.csv", MetricField: "loss"}
	key := MetricKey(model.SourceFile, model.MetricField)

	mgr := &metricstore.MockStoreManager{}
	store := &metricstore.MockMetricStore{}
	mgr.On("GetMetricStore").Return(store)
	store.On("GetStatus").Return(schema.StoreStatus{
		Backend:      "sqlite",
		Connected:    true,
		StatsEntries: 1,
		DataRows:     2,
	}, nil)
	store.On("GetStats", key).Return(schema.StatsRecord{
		MetricKey:  key,
		ModelID:    "m1",
		SourceFile: "train.csv",
		MetricName: "loss",
		Stats:      schema.MetricStats{Min: schema.Float64Ptr(0.1), Max: schema.Float64Ptr(0.9)},
	}, nil)
	store.On("GetData", key).Return([]schema.DataRecord{
		{MetricKey: key, Seq: 0, Timestamp: "2024-03-01T12:00:00Z", RawValue: "0.5", DisplayValue: 0.5},
		{MetricKey: key, Seq: 1, Timestamp: "2024-03-01T12:01:00Z", RawValue: "0.4", DisplayValue: 0.4},
	}, nil)

	prefix := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteExport([]schema.Model{model}, mgr, prefix))

	for _, suffix := range []string{".stats.parquet", ".data.parquet"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err, "Export file %s should exist", suffix)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExecuteExportSkipsMissingStats(t *testing.T) {
	model := schema.Model{ID: "m1", SourceFile: "train.csv", MetricField: "loss"}
	key := MetricKey(model.SourceFile, model.MetricField)

	mgr := &metricstore.MockStoreManager{}
	store := &metricstore.MockMetricStore{}
	mgr.On("GetMetricStore").Return(store)
	store.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true, DataRows: 1}, nil)
	store.On("GetStats", key).Return(schema.StatsRecord{}, contract.ErrStatsNotFound)
	store.On("GetData", key).Return([]schema.DataRecord{
		{MetricKey: key, Timestamp: "2024-03-01T12:00:00Z", RawValue: "0.5", DisplayValue: 0.5},
	}, nil)

	prefix := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteExport([]schema.Model{model}, mgr, prefix))
}
