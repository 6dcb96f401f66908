package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mfeldman/modelfeed/core"
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/outwriter"
	"github.com/mfeldman/modelfeed/internal/source"
)

// statsCmd resolves and prints metric bounds for models.
var statsCmd = &cobra.Command{
	Use:   "stats [model-id...]",
	Short: "Resolve and display metric bounds for models.",
	Long: `Resolve the min/max bounds of each model's metric and print them.

Bounds are served from the store when cached; otherwise the source file is
scanned column by column and the computed bounds are cached for later runs.

Examples:
  # Resolve bounds for every declared model
  modelfeed stats

  # Resolve bounds for one model and export as CSV
  modelfeed stats loss-run-1 --output csv --output-file bounds.csv`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		models, err := selectedModels(args)
		if err != nil {
			contract.LogFatal("Cannot select models", err)
		}

		start := time.Now()
		reader := source.NewCSVReader(cfg.DataDir)
		orch := core.NewOrchestrator(storeManager, reader, nil, nil)

		views := make([]outwriter.StatsView, 0, len(models))
		for _, model := range models {
			stats, err := orch.ResolveStats(rootCtx, model)
			if err != nil {
				contract.LogFatal("Cannot resolve stats", err)
			}
			views = append(views, outwriter.StatsView{Model: model, Stats: stats})
		}

		ow := outwriter.NewOutWriter()
		if err := ow.WriteStats(views, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write stats output", err)
		}
	},
}
