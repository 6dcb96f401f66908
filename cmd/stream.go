package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfeldman/modelfeed/core"
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/sink"
	"github.com/mfeldman/modelfeed/internal/source"
	"github.com/mfeldman/modelfeed/schema"
)

// buildSink constructs the configured sink and the notifier that carries
// lifecycle signals alongside it. The MQTT sink doubles as the notifier so
// control signals travel over the same connection as data.
func buildSink() (contract.Sink, contract.Notifier, error) {
	switch cfg.Sink {
	case schema.MQTTSink:
		clientID := cfg.MQTTClientID
		if clientID == "" {
			clientID = fmt.Sprintf("modelfeed-%d", os.Getpid())
		}
		s, err := sink.NewMQTTSink(sink.MQTTOptions{
			BrokerURL: cfg.MQTTBroker,
			ClientID:  clientID,
			QoS:       cfg.MQTTQoS,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return sink.NewWriterSink(os.Stdout), sink.NewConsoleNotifier(os.Stderr), nil
	}
}

// streamCmd streams model timeseries data to the configured sink.
var streamCmd = &cobra.Command{
	Use:   "stream [model-id...]",
	Short: "Stream model metric timeseries to the configured sink.",
	Long: `Stream the timeseries records of one or more models to a downstream sink.

For each model, modelfeed first resolves the min/max bounds of its metric
(from the store when cached, from the source file otherwise), announces the
model start, then streams (time, value) pairs record by record. Streamed rows
are cached so later runs replay from the store without touching the source
file.

Examples:
  # Stream every model declared in .modelfeed.yaml
  modelfeed stream

  # Stream selected models to stdout as JSON lines
  modelfeed stream loss-run-1 accuracy-run-1

  # Publish records to an MQTT broker instead
  modelfeed stream --sink mqtt --mqtt-broker tcp://localhost:1883`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		models, err := selectedModels(args)
		if err != nil {
			contract.LogFatal("Cannot select models", err)
		}
		if len(models) == 0 {
			contract.LogWarn("No models to stream", fmt.Errorf("declare models under 'models' in the config file"))
			return
		}

		s, notifier, err := buildSink()
		if err != nil {
			contract.LogFatal("Cannot connect sink", err)
		}
		defer func() { _ = s.Close() }()

		reader := source.NewCSVReader(cfg.DataDir)
		orch := core.NewOrchestrator(storeManager, reader, s, notifier)
		results, err := orch.RunModels(rootCtx, models)
		if err != nil {
			contract.LogFatal("Cannot stream models", err)
		}
		fmt.Fprintf(os.Stderr, "Streamed %d model(s). Store backend: %s\n", len(results), cfg.StoreBackend)
	},
}
