package outwriter

import (
	"encoding/csv"
	"io"

	"github.com/mfeldman/modelfeed/internal/contract"
)

// writeJSONResultsForStats marshals the stats views to JSON and writes them.
func writeJSONResultsForStats(w io.Writer, views []StatsView) error {
	return writeJSON(w, views)
}

// writeCSVResultsForStats writes the stats views to a CSV writer.
func writeCSVResultsForStats(w *csv.Writer, views []StatsView, fmtFloat func(float64) string) error {
	// 1. Write Header Row
	header := []string{
		"model_id",
		"source_file",
		"metric",
		"min",
		"max",
		"spread",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	// 2. Write Data Rows
	for _, v := range views {
		spread := contract.SpreadRatio(v.Stats.Min, v.Stats.Max)
		row := []string{
			v.Model.ID,
			v.Model.SourceFile,
			v.Model.MetricField,
			csvBound(v.Stats.Min, fmtFloat),
			csvBound(v.Stats.Max, fmtFloat),
			contract.GetPlainLabel(spread),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// csvBound renders a possibly-absent bound for CSV output. Absent bounds
// become empty cells.
func csvBound(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}
