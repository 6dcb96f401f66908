// Package parquet exports cached metric stats and data rows to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mfeldman/modelfeed/schema"
)

// StatsRow represents one cached stats entry for export.
// This struct maps to the model_metric_stats database table.
type StatsRow struct {
	// MetricKey is the deterministic identifier for (source file, metric)
	MetricKey string `parquet:"metric_key,snappy"`

	// ModelID is the model the stats were resolved for
	ModelID string `parquet:"model_id,snappy"`

	// SourceFile is the data file the stats were computed from
	SourceFile string `parquet:"source_file,snappy"`

	// MetricName is the metric column name
	MetricName string `parquet:"metric_name,snappy"`

	// MinValue is the smallest observed value (nullable)
	MinValue *float64 `parquet:"min_value,optional,snappy"`

	// MaxValue is the largest observed value (nullable)
	MaxValue *float64 `parquet:"max_value,optional,snappy"`

	// CreatedAt is when the stats were cached
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// DataRow represents one cached timeseries record for export.
// This struct maps to the model_metric_data database table.
type DataRow struct {
	// MetricKey is the deterministic identifier for (source file, metric)
	MetricKey string `parquet:"metric_key,snappy"`

	// Seq is the record's position within the stream
	Seq int32 `parquet:"seq,snappy"`

	// RecordTime is the record timestamp in RFC 3339 form
	RecordTime string `parquet:"record_time,snappy"`

	// RawValue is the value exactly as it appeared in the source file
	RawValue string `parquet:"raw_value,snappy"`

	// DisplayValue is the parsed numeric value
	DisplayValue float64 `parquet:"display_value,snappy"`
}

// WriteStatsParquet writes a slice of StatsRow structs to a Parquet file.
func WriteStatsParquet(data []StatsRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the StatsRow struct tags
	writer := parquet.NewGenericWriter[StatsRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteDataParquet writes a slice of DataRow structs to a Parquet file.
func WriteDataParquet(data []DataRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the DataRow struct tags
	writer := parquet.NewGenericWriter[DataRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// ConvertStatsRecords converts schema.StatsRecord values for Parquet export.
func ConvertStatsRecords(records []schema.StatsRecord) []StatsRow {
	result := make([]StatsRow, len(records))
	for i, record := range records {
		result[i] = StatsRow{
			MetricKey:  record.MetricKey,
			ModelID:    record.ModelID,
			SourceFile: record.SourceFile,
			MetricName: record.MetricName,
			MinValue:   record.Stats.Min,
			MaxValue:   record.Stats.Max,
			CreatedAt:  record.CreatedAt,
		}
	}
	return result
}

// ConvertDataRecords converts schema.DataRecord values for Parquet export.
func ConvertDataRecords(records []schema.DataRecord) []DataRow {
	result := make([]DataRow, len(records))
	for i, record := range records {
		result[i] = DataRow{
			MetricKey:    record.MetricKey,
			Seq:          int32(record.Seq),
			RecordTime:   record.Timestamp,
			RawValue:     record.RawValue,
			DisplayValue: record.DisplayValue,
		}
	}
	return result
}
