// Package contract provides interfaces and shared utilities for the modelfeed
// CLI's internal architecture.
package contract

import (
	"context"

	"github.com/mfeldman/modelfeed/schema"
)

// StoreManager defines the interface for accessing the metric store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetMetricStore() MetricStore
}

// MetricStore defines the interface for metric stats and data persistence.
// GetStats returns ErrStatsNotFound when no entry exists for the key; that is
// the one non-fatal outcome and callers treat it as a cache miss.
type MetricStore interface {
	GetStats(key string) (schema.StatsRecord, error)
	PutStats(rec schema.StatsRecord) error
	GetData(key string) ([]schema.DataRecord, error)
	PutData(key string, rows []schema.DataRecord) error
	Close() error
	GetStatus() (schema.StoreStatus, error)
}

// SourceReader defines the interface for the source file collaborator.
type SourceReader interface {
	// Statistics returns per-metric min/max bounds for every numeric field
	// found in the named source file.
	Statistics(ctx context.Context, filename string) (map[string]schema.MetricStats, error)

	// Open starts a sequential read of the model's source file.
	Open(ctx context.Context, model schema.Model) (RecordCursor, error)
}

// RecordCursor yields one parsed record per call. A (nil, nil) return
// signals end-of-stream.
type RecordCursor interface {
	Next() (*schema.DataRecord, error)
	Close() error
}

// Sink is the downstream consumer of streamed (time, value) events.
type Sink interface {
	Emit(event schema.SinkEvent) error
	Close() error
}

// Notifier receives the control signals emitted by the streaming flow:
// a model-started signal carrying the resolved bounds, and a stop signal
// on stream failure. These are the only outward control signals.
type Notifier interface {
	ModelStarted(modelID string, stats schema.MetricStats)
	StopModel(modelID string)
}
