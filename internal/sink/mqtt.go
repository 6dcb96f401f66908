package sink

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// disconnectQuiesceMs is how long Disconnect waits for in-flight messages.
const disconnectQuiesceMs = 250

// MQTTOptions configures the MQTT sink connection.
type MQTTOptions struct {
	BrokerURL string
	ClientID  string
	QoS       byte
}

// MQTTSink publishes one event per record to modelfeed/models/<id>/data.
type MQTTSink struct {
	client mqtt.Client
	qos    byte
}

var _ contract.Sink = &MQTTSink{} // Compile-time check

// NewMQTTSink connects to the broker and returns a ready sink.
func NewMQTTSink(opts MQTTOptions) (*MQTTSink, error) {
	o := mqtt.NewClientOptions()
	o.AddBroker(opts.BrokerURL)
	o.SetClientID(opts.ClientID)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)

	client := mqtt.NewClient(o)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("cannot connect to MQTT broker %q: %w. Check that the broker is running and reachable", opts.BrokerURL, token.Error())
	}
	return &MQTTSink{client: client, qos: opts.QoS}, nil
}

// Topic returns the publish topic for a model.
func Topic(modelID string) string {
	return fmt.Sprintf("modelfeed/models/%s/data", modelID)
}

// Emit implements the Sink interface.
func (s *MQTTSink) Emit(event schema.SinkEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cannot encode sink event: %w", err)
	}
	token := s.client.Publish(Topic(event.ModelID), s.qos, false, b)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("cannot publish to %q: %w", Topic(event.ModelID), err)
	}
	return nil
}

// Close implements the Sink interface.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(disconnectQuiesceMs)
	return nil
}
