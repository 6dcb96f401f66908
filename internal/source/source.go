// Package source reads model timeseries records from CSV source files.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// CSVReader implements the SourceReader interface over CSV files with a
// header row. Relative filenames are resolved against the data directory.
type CSVReader struct {
	dataDir string
}

var _ contract.SourceReader = &CSVReader{} // Compile-time check

// NewCSVReader creates a reader rooted at the given data directory.
func NewCSVReader(dataDir string) *CSVReader {
	return &CSVReader{dataDir: dataDir}
}

// resolve joins a source filename with the data directory unless absolute.
func (r *CSVReader) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(r.dataDir, filename)
}

// Statistics scans the named file once and returns min/max bounds for every
// column that holds at least one numeric value. Non-numeric cells are skipped;
// fully non-numeric columns (such as timestamps) are absent from the result.
func (r *CSVReader) Statistics(ctx context.Context, filename string) (map[string]schema.MetricStats, error) {
	path := r.resolve(filename)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open source file %q: %w. Check data-dir and the model's source_file", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read header of %q: %w", path, err)
	}

	stats := make(map[string]schema.MetricStats, len(header))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed row in %q: %w", path, err)
		}
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			name := header[i]
			s := stats[name]
			if s.Min == nil || v < *s.Min {
				s.Min = schema.Float64Ptr(v)
			}
			if s.Max == nil || v > *s.Max {
				s.Max = schema.Float64Ptr(v)
			}
			stats[name] = s
		}
	}
	return stats, nil
}

// Open starts a sequential read of the model's source file. The returned
// cursor yields one record per Next call and (nil, nil) at end-of-stream.
func (r *CSVReader) Open(_ context.Context, model schema.Model) (contract.RecordCursor, error) {
	path := r.resolve(model.SourceFile)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open source file %q: %w. Check data-dir and the model's source_file", path, err)
	}

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("cannot read header of %q: %w", path, err)
	}

	tsIdx, valIdx := -1, -1
	for i, name := range header {
		switch name {
		case model.TimestampField:
			tsIdx = i
		case model.MetricField:
			valIdx = i
		}
	}
	if tsIdx < 0 {
		_ = file.Close()
		return nil, fmt.Errorf("source file %q has no %q column", path, model.TimestampField)
	}
	if valIdx < 0 {
		_ = file.Close()
		return nil, fmt.Errorf("source file %q has no %q column", path, model.MetricField)
	}

	return &csvCursor{
		file:   file,
		reader: reader,
		path:   path,
		tsIdx:  tsIdx,
		valIdx: valIdx,
	}, nil
}

// csvCursor reads one record per Next call from an open CSV file.
type csvCursor struct {
	file   *os.File
	reader *csv.Reader
	path   string
	tsIdx  int
	valIdx int
	seq    int
}

var _ contract.RecordCursor = &csvCursor{} // Compile-time check

// Next parses the next row into a DataRecord. End-of-file yields (nil, nil).
func (c *csvCursor) Next() (*schema.DataRecord, error) {
	row, err := c.reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("malformed row in %q: %w", c.path, err)
	}
	if c.tsIdx >= len(row) || c.valIdx >= len(row) {
		return nil, fmt.Errorf("short row %d in %q: have %d columns", c.seq, c.path, len(row))
	}

	ts, err := time.Parse(time.RFC3339, row[c.tsIdx])
	if err != nil {
		return nil, fmt.Errorf("bad timestamp in row %d of %q: %w", c.seq, c.path, err)
	}
	raw := row[c.valIdx]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("bad value %q in row %d of %q: %w", raw, c.seq, c.path, err)
	}

	rec := &schema.DataRecord{
		Timestamp:    ts.Format(time.RFC3339),
		RawValue:     raw,
		DisplayValue: value,
		Seq:          c.seq,
	}
	c.seq++
	return rec, nil
}

// Close closes the underlying file.
func (c *csvCursor) Close() error {
	return c.file.Close()
}
