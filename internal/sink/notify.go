package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// ConsoleNotifier reports model lifecycle signals as log lines.
type ConsoleNotifier struct {
	w io.Writer
}

var _ contract.Notifier = &ConsoleNotifier{} // Compile-time check

// NewConsoleNotifier creates a notifier writing to w, normally stderr.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

// ModelStarted implements the Notifier interface.
func (n *ConsoleNotifier) ModelStarted(modelID string, stats schema.MetricStats) {
	fmt.Fprintf(n.w, "model %s started (min=%s max=%s)\n", modelID, formatBound(stats.Min), formatBound(stats.Max))
}

// StopModel implements the Notifier interface.
func (n *ConsoleNotifier) StopModel(modelID string) {
	fmt.Fprintf(n.w, "model %s stopped\n", modelID)
}

func formatBound(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%g", *v)
}

// controlSignal is the payload published on a model's control topic.
type controlSignal struct {
	ModelID string              `json:"model_id"`
	Signal  string              `json:"signal"`
	Stats   *schema.MetricStats `json:"stats,omitempty"`
}

// ControlTopic returns the lifecycle topic for a model.
func ControlTopic(modelID string) string {
	return fmt.Sprintf("modelfeed/models/%s/control", modelID)
}

var _ contract.Notifier = &MQTTSink{} // Compile-time check

// ModelStarted implements the Notifier interface. The signal is published
// on the model's control topic so consumers can prepare before data flows.
func (s *MQTTSink) ModelStarted(modelID string, stats schema.MetricStats) {
	s.publishControl(controlSignal{ModelID: modelID, Signal: "started", Stats: &stats})
}

// StopModel implements the Notifier interface.
func (s *MQTTSink) StopModel(modelID string) {
	s.publishControl(controlSignal{ModelID: modelID, Signal: "stop"})
}

func (s *MQTTSink) publishControl(sig controlSignal) {
	b, err := json.Marshal(sig)
	if err != nil {
		return
	}
	token := s.client.Publish(ControlTopic(sig.ModelID), s.qos, false, b)
	token.Wait()
}
