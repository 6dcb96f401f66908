package schema

// Custom string types for type safety.
type (
	// DatabaseBackend represents the database backend for the metric store.
	DatabaseBackend string

	// OutputMode represents the format of the output.
	OutputMode string

	// SinkKind represents the downstream sink transport.
	SinkKind string
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All sink kinds supported.
const (
	StdoutSink SinkKind = "stdout" // default
	MQTTSink   SinkKind = "mqtt"
)

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSinkKinds lists all valid sink kinds.
var ValidSinkKinds = map[SinkKind]struct{}{
	StdoutSink: {},
	MQTTSink:   {},
}
