package contract

import (
	"context"

	"github.com/mfeldman/modelfeed/schema"
	"github.com/stretchr/testify/mock"
)

// MockSourceReader is a mock implementation of SourceReader for testing.
type MockSourceReader struct {
	mock.Mock
}

var _ SourceReader = &MockSourceReader{} // Compile-time check

// Statistics implements the SourceReader interface.
func (m *MockSourceReader) Statistics(ctx context.Context, filename string) (map[string]schema.MetricStats, error) {
	args := m.Called(ctx, filename)
	stats, _ := args.Get(0).(map[string]schema.MetricStats)
	return stats, args.Error(1)
}

// Open implements the SourceReader interface.
func (m *MockSourceReader) Open(ctx context.Context, model schema.Model) (RecordCursor, error) {
	args := m.Called(ctx, model)
	cursor, _ := args.Get(0).(RecordCursor)
	return cursor, args.Error(1)
}

// MockRecordCursor is a mock implementation of RecordCursor for testing.
type MockRecordCursor struct {
	mock.Mock
}

var _ RecordCursor = &MockRecordCursor{} // Compile-time check

// Next implements the RecordCursor interface.
func (m *MockRecordCursor) Next() (*schema.DataRecord, error) {
	args := m.Called()
	rec, _ := args.Get(0).(*schema.DataRecord)
	return rec, args.Error(1)
}

// Close implements the RecordCursor interface.
func (m *MockRecordCursor) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSink is a mock implementation of Sink for testing.
type MockSink struct {
	mock.Mock
}

var _ Sink = &MockSink{} // Compile-time check

// Emit implements the Sink interface.
func (m *MockSink) Emit(event schema.SinkEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// Close implements the Sink interface.
func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier for testing.
type MockNotifier struct {
	mock.Mock
}

var _ Notifier = &MockNotifier{} // Compile-time check

// ModelStarted implements the Notifier interface.
func (m *MockNotifier) ModelStarted(modelID string, stats schema.MetricStats) {
	m.Called(modelID, stats)
}

// StopModel implements the Notifier interface.
func (m *MockNotifier) StopModel(modelID string) {
	m.Called(modelID)
}
