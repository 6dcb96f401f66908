package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

func TestPrintStoreStatusJSON(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "status.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: outputPath}

	status := schema.StoreStatus{
		Backend:      "sqlite",
		Connected:    true,
		StatsEntries: 2,
		DataRows:     10,
		LastWrite:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, PrintStoreStatus(status, cfg))

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var got schema.StoreStatus
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, status, got)
}
