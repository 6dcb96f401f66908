package contract

import "errors"

// Error kinds for collaborator failures. Each external call position wraps
// its failure with exactly one of these so callers can classify with
// errors.Is without inspecting messages.
var (
	// ErrDatabaseGet marks a failed read from the metric store.
	ErrDatabaseGet = errors.New("metric store read failed")

	// ErrDatabasePut marks a failed write to the metric store.
	ErrDatabasePut = errors.New("metric store write failed")

	// ErrFilesystemGet marks a failed read from a source file, including a
	// statistics result that omits the requested metric.
	ErrFilesystemGet = errors.New("source file read failed")

	// ErrStatsNotFound is the distinguished non-fatal miss for stats lookups.
	ErrStatsNotFound = errors.New("metric stats not found")
)
