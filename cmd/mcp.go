package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfeldman/modelfeed/internal/mcp"
	"github.com/mfeldman/modelfeed/internal/source"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the modelfeed MCP server",
	Long:  `Launch an MCP server that allows AI agents to resolve model stats and stream timeseries data via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Lifecycle messages go to stderr during setup to avoid polluting
		// stdio which is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager, source.NewCSVReader(cfg.DataDir))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
