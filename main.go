// main is the entrypoint for the modelfeed CLI.
package main

import (
	"os"

	"github.com/mfeldman/modelfeed/cmd"
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/metricstore"
)

func main() {
	cmd.SetStoreManager(metricstore.Manager)

	err := cmd.Execute()
	metricstore.CloseStores()
	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
