package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/metricstore"
	"github.com/mfeldman/modelfeed/schema"
)

var testModel = schema.Model{
	ID:             "m1",
	SourceFile:     "train.csv",
	MetricField:    "loss",
	TimestampField: "timestamp",
}

type harness struct {
	manager  *metricstore.MockStoreManager
	store    *metricstore.MockMetricStore
	reader   *contract.MockSourceReader
	sink     *contract.MockSink
	notifier *contract.MockNotifier
	orch     *Orchestrator
}

func newHarness() *harness {
	h := &harness{
		manager:  &metricstore.MockStoreManager{},
		store:    &metricstore.MockMetricStore{},
		reader:   &contract.MockSourceReader{},
		sink:     &contract.MockSink{},
		notifier: &contract.MockNotifier{},
	}
	h.manager.On("GetMetricStore").Return(h.store)
	h.orch = NewOrchestrator(h.manager, h.reader, h.sink, h.notifier)
	return h
}

func completeStats() schema.MetricStats {
	return schema.MetricStats{
		Min: schema.Float64Ptr(0.1),
		Max: schema.Float64Ptr(0.9),
	}
}

func TestMetricKey(t *testing.T) {
	key := MetricKey("train.csv", "loss")
	assert.Len(t, key, 64)
	assert.Equal(t, key, MetricKey("train.csv", "loss"))
	assert.NotEqual(t, key, MetricKey("train.csv", "accuracy"))
	assert.NotEqual(t, key, MetricKey("eval.csv", "loss"))
}

func TestResolveStatsCachedSkipsSource(t *testing.T) {
	h := newHarness()
	cached := schema.StatsRecord{Stats: completeStats()}
	h.store.On("GetStats", mock.Anything).Return(cached, nil)

	stats, err := h.orch.ResolveStats(context.Background(), testModel)
	assert.NoError(t, err)
	assert.Equal(t, 0.1, *stats.Min)
	assert.Equal(t, 0.9, *stats.Max)
	h.reader.AssertNotCalled(t, "Statistics", mock.Anything, mock.Anything)
	h.store.AssertNotCalled(t, "PutStats", mock.Anything)
}

func TestResolveStatsMissComputesAndCaches(t *testing.T) {
	h := newHarness()
	h.store.On("GetStats", mock.Anything).Return(schema.StatsRecord{}, contract.ErrStatsNotFound)
	h.reader.On("Statistics", mock.Anything, "train.csv").Return(map[string]schema.MetricStats{
		"loss": completeStats(),
	}, nil)
	h.store.On("PutStats", mock.MatchedBy(func(rec schema.StatsRecord) bool {
		return rec.ModelID == "m1" && rec.MetricName == "loss" && rec.Stats.Complete()
	})).Return(nil)

	stats, err := h.orch.ResolveStats(context.Background(), testModel)
	assert.NoError(t, err)
	assert.Equal(t, 0.9, *stats.Max)
	h.reader.AssertNumberOfCalls(t, "Statistics", 1)
	h.store.AssertNumberOfCalls(t, "PutStats", 1)
}

func TestResolveStatsMetricMissing(t *testing.T) {
	h := newHarness()
	h.store.On("GetStats", mock.Anything).Return(schema.StatsRecord{}, contract.ErrStatsNotFound)
	h.reader.On("Statistics", mock.Anything, "train.csv").Return(map[string]schema.MetricStats{
		"accuracy": completeStats(),
	}, nil)

	_, err := h.orch.ResolveStats(context.Background(), testModel)
	assert.ErrorIs(t, err, contract.ErrFilesystemGet)
	h.store.AssertNotCalled(t, "PutStats", mock.Anything)
}

func TestResolveStatsReaderFailure(t *testing.T) {
	h := newHarness()
	h.store.On("GetStats", mock.Anything).Return(schema.StatsRecord{}, contract.ErrStatsNotFound)
	h.reader.On("Statistics", mock.Anything, "train.csv").Return(nil, errors.New("no such file"))

	_, err := h.orch.ResolveStats(context.Background(), testModel)
	assert.ErrorIs(t, err, contract.ErrFilesystemGet)
}

func TestResolveStatsLookupFailure(t *testing.T) {
	h := newHarness()
	h.store.On("GetStats", mock.Anything).Return(schema.StatsRecord{}, errors.New("connection refused"))

	_, err := h.orch.ResolveStats(context.Background(), testModel)
	assert.ErrorIs(t, err, contract.ErrDatabaseGet)
	h.reader.AssertNotCalled(t, "Statistics", mock.Anything, mock.Anything)
}

func TestResolveStatsCacheWriteFailure(t *testing.T) {
	h := newHarness()
	h.store.On("GetStats", mock.Anything).Return(schema.StatsRecord{}, contract.ErrStatsNotFound)
	h.reader.On("Statistics", mock.Anything, "train.csv").Return(map[string]schema.MetricStats{
		"loss": completeStats(),
	}, nil)
	h.store.On("PutStats", mock.Anything).Return(errors.New("disk full"))

	_, err := h.orch.ResolveStats(context.Background(), testModel)
	assert.ErrorIs(t, err, contract.ErrDatabasePut)
}

func TestResolveStatsPartialCacheRecomputes(t *testing.T) {
	h := newHarness()
	partial := schema.StatsRecord{Stats: schema.MetricStats{Min: schema.Float64Ptr(0.1)}}
	h.store.On("GetStats", mock.Anything).Return(partial, nil)
	h.reader.On("Statistics", mock.Anything, "train.csv").Return(map[string]schema.MetricStats{
		"loss": completeStats(),
	}, nil)
	h.store.On("PutStats", mock.Anything).Return(nil)

	stats, err := h.orch.ResolveStats(context.Background(), testModel)
	assert.NoError(t, err)
	assert.True(t, stats.Complete())
	h.reader.AssertNumberOfCalls(t, "Statistics", 1)
}

func TestStreamDataReplaysCachedRows(t *testing.T) {
	h := newHarness()
	rows := []schema.DataRecord{
		{Timestamp: "2024-03-01T12:00:00Z", RawValue: "0.5", DisplayValue: 0.5},
		{Timestamp: "2024-03-01T12:01:00Z", RawValue: "0.4", DisplayValue: 0.4},
	}
	h.store.On("GetData", mock.Anything).Return(rows, nil)
	h.sink.On("Emit", schema.SinkEvent{ModelID: "m1", Data: [2]float64{1709294400, 0.5}}).Return(nil).Once()
	h.sink.On("Emit", schema.SinkEvent{ModelID: "m1", Data: [2]float64{1709294460, 0.4}}).Return(nil).Once()

	id, err := h.orch.StreamData(context.Background(), testModel)
	assert.NoError(t, err)
	assert.Equal(t, "m1", id)
	h.reader.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	h.store.AssertNotCalled(t, "PutData", mock.Anything, mock.Anything)
	h.sink.AssertExpectations(t)
}

func TestStreamDataReadsSourceAndBatches(t *testing.T) {
	h := newHarness()
	h.store.On("GetData", mock.Anything).Return(nil, nil)
	cursor := &contract.MockRecordCursor{}
	cursor.On("Next").Return(&schema.DataRecord{
		Timestamp: "2024-03-01T12:00:00Z", RawValue: "0.5", DisplayValue: 0.5, Seq: 0,
	}, nil).Once()
	cursor.On("Next").Return(&schema.DataRecord{
		Timestamp: "2024-03-01T12:01:00Z", RawValue: "0.4", DisplayValue: 0.4, Seq: 1,
	}, nil).Once()
	cursor.On("Next").Return(nil, nil).Once()
	cursor.On("Close").Return(nil)
	h.reader.On("Open", mock.Anything, testModel).Return(cursor, nil)
	h.sink.On("Emit", mock.Anything).Return(nil)
	key := MetricKey(testModel.SourceFile, testModel.MetricField)
	h.store.On("PutData", key, mock.MatchedBy(func(rows []schema.DataRecord) bool {
		return len(rows) == 2 && rows[0].MetricKey == key && rows[1].MetricKey == key
	})).Return(nil)

	id, err := h.orch.StreamData(context.Background(), testModel)
	assert.NoError(t, err)
	assert.Equal(t, "m1", id)
	h.sink.AssertNumberOfCalls(t, "Emit", 2)
	h.store.AssertNumberOfCalls(t, "PutData", 1)
	cursor.AssertExpectations(t)
}

func TestStreamDataEmptySourceSkipsBatch(t *testing.T) {
	h := newHarness()
	h.store.On("GetData", mock.Anything).Return(nil, nil)
	cursor := &contract.MockRecordCursor{}
	cursor.On("Next").Return(nil, nil).Once()
	cursor.On("Close").Return(nil)
	h.reader.On("Open", mock.Anything, testModel).Return(cursor, nil)

	id, err := h.orch.StreamData(context.Background(), testModel)
	assert.NoError(t, err)
	assert.Equal(t, "m1", id)
	h.sink.AssertNotCalled(t, "Emit", mock.Anything)
	h.store.AssertNotCalled(t, "PutData", mock.Anything, mock.Anything)
}

func TestStreamDataReadErrorStopsModel(t *testing.T) {
	h := newHarness()
	h.store.On("GetData", mock.Anything).Return(nil, nil)
	cursor := &contract.MockRecordCursor{}
	cursor.On("Next").Return(&schema.DataRecord{
		Timestamp: "2024-03-01T12:00:00Z", RawValue: "0.5", DisplayValue: 0.5,
	}, nil).Once()
	cursor.On("Next").Return(nil, errors.New("bad value \"oops\" in row 3"))
	cursor.On("Close").Return(nil)
	h.reader.On("Open", mock.Anything, testModel).Return(cursor, nil)
	h.sink.On("Emit", mock.Anything).Return(nil)
	h.notifier.On("StopModel", "m1").Return()

	_, err := h.orch.StreamData(context.Background(), testModel)
	assert.Error(t, err)
	h.notifier.AssertCalled(t, "StopModel", "m1")
	h.sink.AssertNumberOfCalls(t, "Emit", 1)
	h.store.AssertNotCalled(t, "PutData", mock.Anything, mock.Anything)
}

func TestStreamDataOpenFailureStopsModel(t *testing.T) {
	h := newHarness()
	h.store.On("GetData", mock.Anything).Return(nil, nil)
	h.reader.On("Open", mock.Anything, testModel).Return(nil, errors.New("no such file"))
	h.notifier.On("StopModel", "m1").Return()

	_, err := h.orch.StreamData(context.Background(), testModel)
	assert.ErrorIs(t, err, contract.ErrFilesystemGet)
	h.notifier.AssertCalled(t, "StopModel", "m1")
}

func TestStreamDataBatchWriteFailure(t *testing.T) {
	h := newHarness()
	h.store.On("GetData", mock.Anything).Return(nil, nil)
	cursor := &contract.MockRecordCursor{}
	cursor.On("Next").Return(&schema.DataRecord{
		Timestamp: "2024-03-01T12:00:00Z", RawValue: "0.5", DisplayValue: 0.5,
	}, nil).Once()
	cursor.On("Next").Return(nil, nil).Once()
	cursor.On("Close").Return(nil)
	h.reader.On("Open", mock.Anything, testModel).Return(cursor, nil)
	h.sink.On("Emit", mock.Anything).Return(nil)
	h.store.On("PutData", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := h.orch.StreamData(context.Background(), testModel)
	assert.ErrorIs(t, err, contract.ErrDatabasePut)
}

func TestRunModelAnnouncesBeforeStreaming(t *testing.T) {
	h := newHarness()
	cached := schema.StatsRecord{Stats: completeStats()}
	h.store.On("GetStats", mock.Anything).Return(cached, nil)
	h.store.On("GetData", mock.Anything).Return([]schema.DataRecord{
		{Timestamp: "2024-03-01T12:00:00Z", RawValue: "0.5", DisplayValue: 0.5},
	}, nil)
	h.notifier.On("ModelStarted", "m1", cached.Stats).Return()
	h.sink.On("Emit", mock.Anything).Return(nil)

	result, err := h.orch.RunModel(context.Background(), testModel)
	assert.NoError(t, err)
	assert.Equal(t, "m1", result.ModelID)
	assert.Equal(t, 0.1, *result.Stats.Min)
	h.notifier.AssertCalled(t, "ModelStarted", "m1", cached.Stats)
}

func TestRunModelsStopsAtFirstFailure(t *testing.T) {
	h := newHarness()
	h.store.On("GetStats", mock.Anything).Return(schema.StatsRecord{}, errors.New("connection refused"))

	results, err := h.orch.RunModels(context.Background(), []schema.Model{testModel, {ID: "m2"}})
	assert.ErrorIs(t, err, contract.ErrDatabaseGet)
	assert.Empty(t, results)
}
