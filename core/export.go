package core

import (
	"errors"
	"fmt"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/parquet"
	"github.com/mfeldman/modelfeed/schema"
)

// ExecuteExport writes cached stats and data rows for the declared models to
// Parquet files derived from outputFile.
func ExecuteExport(models []schema.Model, mgr contract.StoreManager, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetMetricStore()
	if store == nil {
		return errors.New("metric store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.StatsEntries == 0 && status.DataRows == 0 {
		return errors.New("no cached data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total stats entries: %d\n", status.StatsEntries)
	fmt.Printf("Total data rows: %d\n", status.DataRows)

	// Collect rows for each declared model's metric key
	var statsRecords []schema.StatsRecord
	var dataRecords []schema.DataRecord
	for _, model := range models {
		key := MetricKey(model.SourceFile, model.MetricField)

		rec, err := store.GetStats(key)
		if err != nil && !errors.Is(err, contract.ErrStatsNotFound) {
			return fmt.Errorf("failed to retrieve stats for model %q: %w", model.ID, err)
		}
		if err == nil {
			statsRecords = append(statsRecords, rec)
		}

		rows, err := store.GetData(key)
		if err != nil {
			return fmt.Errorf("failed to retrieve data rows for model %q: %w", model.ID, err)
		}
		dataRecords = append(dataRecords, rows...)
	}

	// Write stats to Parquet
	statsFile := outputFile + ".stats.parquet"
	if err := parquet.WriteStatsParquet(parquet.ConvertStatsRecords(statsRecords), statsFile); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	fmt.Printf("Exported %d stats entries to: %s\n", len(statsRecords), statsFile)

	// Write data rows to Parquet
	dataFile := outputFile + ".data.parquet"
	if err := parquet.WriteDataParquet(parquet.ConvertDataRecords(dataRecords), dataFile); err != nil {
		return fmt.Errorf("failed to write data rows: %w", err)
	}
	fmt.Printf("Exported %d data rows to: %s\n", len(dataRecords), dataFile)

	return nil
}
