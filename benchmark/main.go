// Package main provides a performance benchmarking tool for the modelfeed CLI.
// It generates synthetic source files of different sizes, streams each one with
// a cold store (records parsed from the file) and again with a warm store
// (records replayed from cache), and reports the timings as CSV.
//
// Prerequisites:
// - modelfeed binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory to place fixtures and store files in
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the timings for one fixture size.
type BenchmarkResult struct {
	Rows     int
	ColdTime time.Duration
	WarmTime time.Duration
}

// fixtureSizes is the number of rows per generated source file.
var fixtureSizes = []int{1_000, 10_000, 100_000}

// warmRuns is how many replay runs are averaged for the warm timing.
const warmRuns = 3

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	if _, err := exec.LookPath("modelfeed"); err != nil {
		fmt.Println("Prerequisites check failed: modelfeed binary not found in PATH")
		os.Exit(1)
	}

	var results []BenchmarkResult
	for _, rows := range fixtureSizes {
		result, err := benchmarkFixture(workDir, rows)
		if err != nil {
			fmt.Printf("Benchmark for %d rows failed: %v\n", rows, err)
			os.Exit(1)
		}
		results = append(results, result)
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	_ = w.Write([]string{"rows", "cold", "warm"})
	for _, r := range results {
		_ = w.Write([]string{
			fmt.Sprintf("%d", r.Rows),
			r.ColdTime.String(),
			r.WarmTime.String(),
		})
	}
}

// benchmarkFixture generates a fixture of the given size, then times a cold
// stream and the average of several warm streams.
func benchmarkFixture(workDir string, rows int) (BenchmarkResult, error) {
	dir := filepath.Join(workDir, fmt.Sprintf("bench-%d", rows))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BenchmarkResult{}, err
	}
	if err := writeFixture(dir, rows); err != nil {
		return BenchmarkResult{}, err
	}

	cold, err := timeStream(dir)
	if err != nil {
		return BenchmarkResult{}, err
	}

	var warmTotal time.Duration
	for range warmRuns {
		warm, err := timeStream(dir)
		if err != nil {
			return BenchmarkResult{}, err
		}
		warmTotal += warm
	}

	return BenchmarkResult{
		Rows:     rows,
		ColdTime: cold,
		WarmTime: warmTotal / warmRuns,
	}, nil
}

// writeFixture creates the source CSV and the .modelfeed.yaml config.
func writeFixture(dir string, rows int) error {
	f, err := os.Create(filepath.Join(dir, "metrics.csv"))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, "timestamp,loss"); err != nil {
		return err
	}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		ts := start.Add(time.Duration(i) * time.Second).Format(time.RFC3339)
		if _, err := fmt.Fprintf(f, "%s,%.6f\n", ts, 1.0/float64(i+1)); err != nil {
			return err
		}
	}

	config := fmt.Sprintf(`data-dir: .
store-backend: sqlite
store-db-connect: %q
models:
  - id: bench
    source_file: metrics.csv
    metric_field: loss
    timestamp_field: timestamp
`, filepath.Join(dir, "store.db"))
	return os.WriteFile(filepath.Join(dir, ".modelfeed.yaml"), []byte(config), 0o644)
}

// timeStream runs one `modelfeed stream` invocation and returns its duration.
func timeStream(dir string) (time.Duration, error) {
	cmd := exec.Command("modelfeed", "stream", "bench")
	cmd.Dir = dir
	cmd.Stdout = nil
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("stream run failed: %w", err)
	}
	return time.Since(start), nil
}
