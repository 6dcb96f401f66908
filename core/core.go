// Package core implements the model data streaming flow: resolving cached
// metric bounds and replaying or reading timeseries records to a sink.
package core

import (
	"crypto/sha256"
	"fmt"
)

// MetricKey creates the deterministic store identifier for a
// (source file, metric name) pair.
func MetricKey(sourceFile, metricName string) string {
	key := fmt.Sprintf("%s:%s", sourceFile, metricName)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
