// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"golang.org/x/term"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// StatsView pairs a model with its resolved metric bounds for printing.
type StatsView struct {
	Model schema.Model       `json:"model"`
	Stats schema.MetricStats `json:"stats"`
}

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStats prints resolved model stats using the configured output format.
func (ow *OutWriter) WriteStats(views []StatsView, cfg *contract.Config, duration time.Duration) error {
	return PrintStatsResults(views, cfg, duration)
}

// WriteStatus prints metric store status using the configured output format.
func (ow *OutWriter) WriteStatus(status schema.StoreStatus, cfg *contract.Config) error {
	return PrintStoreStatus(status, cfg)
}

// GetMaxTablePathWidth calculates the maximum width for source file paths in
// table output based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the model, metric, bounds, and spread columns
	// with table borders, separators, and padding.
	baseWidth := 55

	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable path width
		return 15
	}
	if available > 70 {
		// Maximum path width to prevent overly long paths
		return 70
	}
	return available
}
