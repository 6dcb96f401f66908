package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// Orchestrator drives stats resolution and data streaming for models.
// The metric store is consulted first for both flows; the source reader
// is the fallback, and its results are written back to the store.
type Orchestrator struct {
	stores   contract.StoreManager
	reader   contract.SourceReader
	sink     contract.Sink
	notifier contract.Notifier
}

// NewOrchestrator wires the collaborators for a streaming session.
func NewOrchestrator(stores contract.StoreManager, reader contract.SourceReader, sink contract.Sink, notifier contract.Notifier) *Orchestrator {
	return &Orchestrator{stores: stores, reader: reader, sink: sink, notifier: notifier}
}

// ResolveStats returns the min/max bounds for the model's metric. Cached
// bounds are served when both are present; otherwise bounds are computed
// from the source file and cached before returning.
func (o *Orchestrator) ResolveStats(ctx context.Context, model schema.Model) (schema.MetricStats, error) {
	key := MetricKey(model.SourceFile, model.MetricField)
	store := o.stores.GetMetricStore()

	if store != nil {
		rec, err := store.GetStats(key)
		if err == nil && rec.Stats.Complete() {
			return rec.Stats, nil
		}
		if err != nil && !errors.Is(err, contract.ErrStatsNotFound) {
			return schema.MetricStats{}, fmt.Errorf("stats lookup for model %q: %w: %w", model.ID, contract.ErrDatabaseGet, err)
		}
	}

	stats, err := o.reader.Statistics(ctx, model.SourceFile)
	if err != nil {
		return schema.MetricStats{}, fmt.Errorf("statistics for %q: %w: %w", model.SourceFile, contract.ErrFilesystemGet, err)
	}
	bounds, ok := stats[model.MetricField]
	if !ok || !bounds.Complete() {
		return schema.MetricStats{}, fmt.Errorf("%w: metric %q absent from statistics of %q", contract.ErrFilesystemGet, model.MetricField, model.SourceFile)
	}

	if store != nil {
		rec := schema.StatsRecord{
			MetricKey:  key,
			ModelID:    model.ID,
			SourceFile: model.SourceFile,
			MetricName: model.MetricField,
			Stats:      bounds,
			CreatedAt:  time.Now(),
		}
		if err := store.PutStats(rec); err != nil {
			return schema.MetricStats{}, fmt.Errorf("cache stats for model %q: %w: %w", model.ID, contract.ErrDatabasePut, err)
		}
	}
	return bounds, nil
}

// StreamData emits the model's timeseries to the sink and returns the
// model id on completion. Cached rows are replayed when present;
// otherwise the source file is read record by record, each record is
// emitted as it arrives, and the accumulated rows are persisted in one
// batch at end of input. Any mid-stream failure stops the model before
// the error is returned.
func (o *Orchestrator) StreamData(ctx context.Context, model schema.Model) (string, error) {
	key := MetricKey(model.SourceFile, model.MetricField)
	store := o.stores.GetMetricStore()

	if store != nil {
		rows, err := store.GetData(key)
		if err != nil {
			return "", fmt.Errorf("cached rows for model %q: %w: %w", model.ID, contract.ErrDatabaseGet, err)
		}
		if len(rows) > 0 {
			if err := o.replay(model.ID, rows); err != nil {
				o.notifier.StopModel(model.ID)
				return "", err
			}
			return model.ID, nil
		}
	}

	cursor, err := o.reader.Open(ctx, model)
	if err != nil {
		o.notifier.StopModel(model.ID)
		return "", fmt.Errorf("open source for model %q: %w: %w", model.ID, contract.ErrFilesystemGet, err)
	}
	defer cursor.Close()

	var rows []schema.DataRecord
	for {
		rec, err := cursor.Next()
		if err != nil {
			o.notifier.StopModel(model.ID)
			return "", fmt.Errorf("read source for model %q: %w", model.ID, err)
		}
		if rec == nil {
			break
		}
		rec.MetricKey = key
		secs, err := rec.EpochSeconds()
		if err != nil {
			o.notifier.StopModel(model.ID)
			return "", fmt.Errorf("timestamp in source for model %q: %w", model.ID, err)
		}
		event := schema.SinkEvent{ModelID: model.ID, Data: [2]float64{secs, rec.DisplayValue}}
		if err := o.sink.Emit(event); err != nil {
			o.notifier.StopModel(model.ID)
			return "", fmt.Errorf("emit for model %q: %w", model.ID, err)
		}
		rows = append(rows, *rec)
	}

	if store != nil && len(rows) > 0 {
		if err := store.PutData(key, rows); err != nil {
			return "", fmt.Errorf("cache rows for model %q: %w: %w", model.ID, contract.ErrDatabasePut, err)
		}
	}
	return model.ID, nil
}

// replay emits previously cached rows in their stored order.
func (o *Orchestrator) replay(modelID string, rows []schema.DataRecord) error {
	for _, rec := range rows {
		secs, err := rec.EpochSeconds()
		if err != nil {
			return fmt.Errorf("cached timestamp for model %q: %w", modelID, err)
		}
		value, err := strconv.ParseFloat(rec.RawValue, 64)
		if err != nil {
			return fmt.Errorf("cached value for model %q: %w", modelID, err)
		}
		event := schema.SinkEvent{ModelID: modelID, Data: [2]float64{secs, value}}
		if err := o.sink.Emit(event); err != nil {
			return fmt.Errorf("emit for model %q: %w", modelID, err)
		}
	}
	return nil
}
