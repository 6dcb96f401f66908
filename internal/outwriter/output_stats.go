package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// PrintStatsResults outputs the resolved stats, dispatching based on the output format configured.
func PrintStatsResults(views []StatsView, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat := createFloatFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForStats(views, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForStats(views, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printStatsTable(views, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing stats table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForStats handles opening the file and calling the JSON writer.
func printJSONResultsForStats(views []StatsView, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForStats(w, views)
	}, "Wrote JSON stats results")
}

// printCSVResultsForStats handles opening the file and calling the CSV writer.
func printCSVResultsForStats(views []StatsView, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForStats(csvWriter, views, fmtFloat)
	}, "Wrote CSV stats results")
}

// printStatsTable prints the resolved bounds in a six-column table.
func printStatsTable(views []StatsView, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	headers := []string{"Model", "Source", "Metric", "Min", "Max", "Spread"}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, v := range views {
		spread := contract.SpreadRatio(v.Stats.Min, v.Stats.Max)
		label := contract.GetPlainLabel(spread)
		if cfg.UseColors {
			label = contract.GetColorLabel(spread)
		}
		row := []string{
			v.Model.ID,
			contract.TruncatePath(v.Model.SourceFile, GetMaxTablePathWidth(cfg)),
			v.Model.MetricField,
			formatBound(v.Stats.Min, fmtFloat),
			formatBound(v.Stats.Max, fmtFloat),
			label,
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Stats resolution completed in %v. Store backend: %s\n", duration, cfg.StoreBackend)
	return nil
}

// formatBound renders a possibly-absent bound for display.
func formatBound(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return "-"
	}
	return fmtFloat(*v)
}
