// Package metricstore persists metric stats and streamed data rows.
package metricstore

import (
	"sync"

	"github.com/mfeldman/modelfeed/internal/contract"
)

// StoreManagerImpl manages the MetricStore instance.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointer during initialization
	metrics      contract.MetricStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetMetricStore returns the metric store.
func (mgr *StoreManagerImpl) GetMetricStore() contract.MetricStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.metrics
}
