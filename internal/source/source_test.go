package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mfeldman/modelfeed/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSourceFile writes a CSV file into a temp data dir and returns the dir.
func writeSourceFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

const sampleCSV = `timestamp,loss,accuracy,note
2024-03-01T00:00:00Z,1.50,0.10,warmup
2024-03-01T00:01:00Z,0.90,0.55,steady
2024-03-01T00:02:00Z,0.40,0.81,steady
`

func TestStatistics(t *testing.T) {
	dir := writeSourceFile(t, "run1.csv", sampleCSV)
	reader := NewCSVReader(dir)

	stats, err := reader.Statistics(context.Background(), "run1.csv")
	require.NoError(t, err)

	loss, ok := stats["loss"]
	require.True(t, ok)
	require.True(t, loss.Complete())
	assert.Equal(t, 0.40, *loss.Min)
	assert.Equal(t, 1.50, *loss.Max)

	acc, ok := stats["accuracy"]
	require.True(t, ok)
	assert.Equal(t, 0.10, *acc.Min)
	assert.Equal(t, 0.81, *acc.Max)

	// Non-numeric columns never appear.
	_, ok = stats["timestamp"]
	assert.False(t, ok)
	_, ok = stats["note"]
	assert.False(t, ok)
}

func TestStatisticsMissingFile(t *testing.T) {
	reader := NewCSVReader(t.TempDir())

	_, err := reader.Statistics(context.Background(), "nope.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open source file")
}

func TestOpenAndNext(t *testing.T) {
	dir := writeSourceFile(t, "run1.csv", sampleCSV)
	reader := NewCSVReader(dir)
	model := schema.Model{ID: "m1", SourceFile: "run1.csv", MetricField: "loss", TimestampField: "timestamp"}

	cursor, err := reader.Open(context.Background(), model)
	require.NoError(t, err)
	defer func() { _ = cursor.Close() }()

	wantValues := []float64{1.5, 0.9, 0.4}
	for i, want := range wantValues {
		rec, err := cursor.Next()
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, i, rec.Seq)
		assert.Equal(t, want, rec.DisplayValue)
	}

	// End sentinel.
	rec, err := cursor.Next()
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestOpenMissingColumn(t *testing.T) {
	dir := writeSourceFile(t, "run1.csv", sampleCSV)
	reader := NewCSVReader(dir)

	_, err := reader.Open(context.Background(), schema.Model{
		ID: "m1", SourceFile: "run1.csv", MetricField: "psnr", TimestampField: "timestamp",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `no "psnr" column`)
}

func TestNextBadTimestamp(t *testing.T) {
	dir := writeSourceFile(t, "bad.csv", "timestamp,loss\nnot-a-time,1.0\n")
	reader := NewCSVReader(dir)

	cursor, err := reader.Open(context.Background(), schema.Model{
		ID: "m1", SourceFile: "bad.csv", MetricField: "loss", TimestampField: "timestamp",
	})
	require.NoError(t, err)
	defer func() { _ = cursor.Close() }()

	_, err = cursor.Next()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad timestamp")
}

func TestNextBadValue(t *testing.T) {
	dir := writeSourceFile(t, "bad.csv", "timestamp,loss\n2024-03-01T00:00:00Z,oops\n")
	reader := NewCSVReader(dir)

	cursor, err := reader.Open(context.Background(), schema.Model{
		ID: "m1", SourceFile: "bad.csv", MetricField: "loss", TimestampField: "timestamp",
	})
	require.NoError(t, err)
	defer func() { _ = cursor.Close() }()

	_, err = cursor.Next()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad value")
}

func TestAbsolutePathBypassesDataDir(t *testing.T) {
	dir := writeSourceFile(t, "run1.csv", sampleCSV)
	reader := NewCSVReader("/somewhere/else")

	stats, err := reader.Statistics(context.Background(), filepath.Join(dir, "run1.csv"))
	require.NoError(t, err)
	assert.Contains(t, stats, "loss")
}
