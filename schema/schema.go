// Package schema holds the shared data structures for modelfeed.
package schema

import "time"

// Model identifies a tracked source-file/metric pair. Models are declared in
// configuration and are read-only to the streaming flow.
type Model struct {
	ID             string `json:"id" mapstructure:"id"`
	SourceFile     string `json:"source_file" mapstructure:"source_file"`
	MetricField    string `json:"metric_field" mapstructure:"metric_field"`
	TimestampField string `json:"timestamp_field" mapstructure:"timestamp_field"`
}

// MetricStats holds the min/max bounds for a metric. Nil pointers mean the
// bound has not been resolved yet; a cached entry is only usable when both
// bounds are present.
type MetricStats struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Complete reports whether both bounds are present.
func (s MetricStats) Complete() bool {
	return s.Min != nil && s.Max != nil
}

// StatsRecord is a resolved MetricStats entry tagged with the model and
// source file it was computed for. This is the shape persisted to the store.
type StatsRecord struct {
	MetricKey  string      `json:"metric_key"`
	ModelID    string      `json:"model_id"`
	SourceFile string      `json:"source_file"`
	MetricName string      `json:"metric_name"`
	Stats      MetricStats `json:"stats"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DataRecord is a single timeseries observation read from a source file.
// Seq preserves the order records were read in; replay follows Seq.
type DataRecord struct {
	Timestamp    string  `json:"timestamp"` // RFC3339
	RawValue     string  `json:"raw_value"`
	DisplayValue float64 `json:"display_value"`
	MetricKey    string  `json:"metric_key"`
	Seq          int     `json:"seq"`
}

// EpochSeconds converts the record timestamp to Unix seconds.
// Returns an error when the timestamp is not valid RFC3339.
func (r DataRecord) EpochSeconds() (float64, error) {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return 0, err
	}
	return float64(t.Unix()), nil
}

// SinkEvent is the payload delivered downstream for each record:
// Data[0] is the epoch-seconds timestamp, Data[1] the metric value.
type SinkEvent struct {
	ModelID string     `json:"model_id"`
	Data    [2]float64 `json:"data"`
}

// StoreStatus reports metric store health and content counts.
type StoreStatus struct {
	Backend      string    `json:"backend"`
	Connected    bool      `json:"connected"`
	StatsEntries int       `json:"stats_entries"`
	DataRows     int       `json:"data_rows"`
	LastWrite    time.Time `json:"last_write,omitempty"`
}

// Float64Ptr returns a pointer to v. Convenience for building MetricStats.
func Float64Ptr(v float64) *float64 {
	return &v
}
