package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// PrintStoreStatus outputs the metric store status, dispatching based on the output format configured.
func PrintStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON store status")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Field", "Value"})

	lastWrite := "never"
	if !status.LastWrite.IsZero() {
		lastWrite = status.LastWrite.Format(time.RFC3339)
	}
	data := [][]string{
		{"Backend", status.Backend},
		{"Connected", strconv.FormatBool(status.Connected)},
		{"Stats entries", strconv.Itoa(status.StatsEntries)},
		{"Data rows", strconv.Itoa(status.DataRows)},
		{"Last write", lastWrite},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error writing status table output: %w", err)
	}
	return nil
}
