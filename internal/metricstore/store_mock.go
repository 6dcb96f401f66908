package metricstore

import (
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetMetricStore implements the StoreManager interface.
func (m *MockStoreManager) GetMetricStore() contract.MetricStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.MetricStore)
	return store
}

// MockMetricStore is a mock implementation of MetricStore for testing.
type MockMetricStore struct {
	mock.Mock
}

var _ contract.MetricStore = &MockMetricStore{} // Compile-time check

// GetStats implements the MetricStore interface.
func (m *MockMetricStore) GetStats(key string) (schema.StatsRecord, error) {
	args := m.Called(key)
	return args.Get(0).(schema.StatsRecord), args.Error(1)
}

// PutStats implements the MetricStore interface.
func (m *MockMetricStore) PutStats(rec schema.StatsRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// GetData implements the MetricStore interface.
func (m *MockMetricStore) GetData(key string) ([]schema.DataRecord, error) {
	args := m.Called(key)
	rows, _ := args.Get(0).([]schema.DataRecord)
	return rows, args.Error(1)
}

// PutData implements the MetricStore interface.
func (m *MockMetricStore) PutData(key string, rows []schema.DataRecord) error {
	args := m.Called(key, rows)
	return args.Error(0)
}

// Close implements the MetricStore interface.
func (m *MockMetricStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the MetricStore interface.
func (m *MockMetricStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}
