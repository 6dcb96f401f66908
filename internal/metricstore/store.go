package metricstore

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for metric persistence.
const (
	statsTable = "model_metric_stats"
	dataTable  = "model_metric_data"
)

// tableNamePattern restricts table names to safe identifiers.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MetricStoreImpl handles durable storage operations using various database backends.
type MetricStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.MetricStore = &MetricStoreImpl{} // Compile-time check

// NewMetricStore initializes and returns a new MetricStore based on the backend type.
func NewMetricStore(backend schema.DatabaseBackend, connStr string) (contract.MetricStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &MetricStoreImpl{
			db:      nil,
			backend: backend,
			connStr: connStr,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	// Ping to verify connection (skip for NoneBackend)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	// Create the table schemas
	if err := createMetricTables(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &MetricStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// createMetricTables creates the stats and data tables.
func createMetricTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{statsTable, getCreateStatsTableQuery(backend)},
		{dataTable, getCreateDataTableQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateStatsTableQuery returns the CREATE TABLE query for model_metric_stats.
func getCreateStatsTableQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(statsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_key VARCHAR(64) PRIMARY KEY,
				model_id VARCHAR(255) NOT NULL,
				source_file VARCHAR(1024) NOT NULL,
				metric_name VARCHAR(255) NOT NULL,
				min_value DOUBLE,
				max_value DOUBLE,
				created_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_key TEXT PRIMARY KEY,
				model_id TEXT NOT NULL,
				source_file TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				min_value DOUBLE PRECISION,
				max_value DOUBLE PRECISION,
				created_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_key TEXT PRIMARY KEY,
				model_id TEXT NOT NULL,
				source_file TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				min_value REAL,
				max_value REAL,
				created_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateDataTableQuery returns the CREATE TABLE query for model_metric_data.
func getCreateDataTableQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(dataTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_key VARCHAR(64) NOT NULL,
				seq INT NOT NULL,
				record_time VARCHAR(64) NOT NULL,
				raw_value VARCHAR(255) NOT NULL,
				display_value DOUBLE NOT NULL,
				PRIMARY KEY (metric_key, seq)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_key TEXT NOT NULL,
				seq INTEGER NOT NULL,
				record_time TEXT NOT NULL,
				raw_value TEXT NOT NULL,
				display_value DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (metric_key, seq)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric_key TEXT NOT NULL,
				seq INTEGER NOT NULL,
				record_time TEXT NOT NULL,
				raw_value TEXT NOT NULL,
				display_value REAL NOT NULL,
				PRIMARY KEY (metric_key, seq)
			);
		`, quotedTableName)
	}
}

// GetStats retrieves the stats record for a metric key.
// Returns contract.ErrStatsNotFound when no entry exists.
func (ms *MetricStoreImpl) GetStats(key string) (schema.StatsRecord, error) {
	var rec schema.StatsRecord
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return rec, contract.ErrStatsNotFound
	}

	quotedTableName := quoteTableName(statsTable, ms.backend)
	query := fmt.Sprintf(
		`SELECT model_id, source_file, metric_name, min_value, max_value, created_at FROM %s WHERE metric_key = %s`,
		quotedTableName, ms.placeholder(1))
	row := ms.db.QueryRow(query, key)

	var minVal, maxVal sql.NullFloat64
	var createdAt int64
	if err := row.Scan(&rec.ModelID, &rec.SourceFile, &rec.MetricName, &minVal, &maxVal, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, contract.ErrStatsNotFound
		}
		return rec, err
	}

	rec.MetricKey = key
	rec.CreatedAt = time.Unix(createdAt, 0)
	if minVal.Valid {
		rec.Stats.Min = schema.Float64Ptr(minVal.Float64)
	}
	if maxVal.Valid {
		rec.Stats.Max = schema.Float64Ptr(maxVal.Float64)
	}
	return rec, nil
}

// PutStats inserts or replaces the stats record for a metric key.
func (ms *MetricStoreImpl) PutStats(rec schema.StatsRecord) error {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil
	}

	var minVal, maxVal sql.NullFloat64
	if rec.Stats.Min != nil {
		minVal = sql.NullFloat64{Float64: *rec.Stats.Min, Valid: true}
	}
	if rec.Stats.Max != nil {
		maxVal = sql.NullFloat64{Float64: *rec.Stats.Max, Valid: true}
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := ms.getStatsUpsertQuery()
	_, err := ms.db.Exec(query, rec.MetricKey, rec.ModelID, rec.SourceFile, rec.MetricName, minVal, maxVal, createdAt.Unix())
	return err
}

// getStatsUpsertQuery returns the UPSERT query for the backend.
func (ms *MetricStoreImpl) getStatsUpsertQuery() string {
	quotedTableName := quoteTableName(statsTable, ms.backend)
	switch ms.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (metric_key, model_id, source_file, metric_name, min_value, max_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE model_id = new.model_id, source_file = new.source_file, metric_name = new.metric_name, min_value = new.min_value, max_value = new.max_value, created_at = new.created_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (metric_key, model_id, source_file, metric_name, min_value, max_value, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (metric_key) DO UPDATE SET model_id = EXCLUDED.model_id, source_file = EXCLUDED.source_file, metric_name = EXCLUDED.metric_name, min_value = EXCLUDED.min_value, max_value = EXCLUDED.max_value, created_at = EXCLUDED.created_at`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (metric_key, model_id, source_file, metric_name, min_value, max_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
	}
}

// GetData retrieves all cached rows for a metric key in sequence order.
// An empty result is not an error.
func (ms *MetricStoreImpl) GetData(key string) ([]schema.DataRecord, error) {
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(dataTable, ms.backend)
	query := fmt.Sprintf(
		`SELECT seq, record_time, raw_value, display_value FROM %s WHERE metric_key = %s ORDER BY seq ASC`,
		quotedTableName, ms.placeholder(1))

	rows, err := ms.db.Query(query, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []schema.DataRecord
	for rows.Next() {
		rec := schema.DataRecord{MetricKey: key}
		if err := rows.Scan(&rec.Seq, &rec.Timestamp, &rec.RawValue, &rec.DisplayValue); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PutData persists a batch of rows for a metric key in a single transaction.
func (ms *MetricStoreImpl) PutData(key string, recs []schema.DataRecord) error {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil
	}

	tx, err := ms.db.Begin()
	if err != nil {
		return err
	}

	query := ms.getDataInsertQuery()
	for _, rec := range recs {
		if _, err := tx.Exec(query, key, rec.Seq, rec.Timestamp, rec.RawValue, rec.DisplayValue); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// getDataInsertQuery returns the row insert query for the backend.
func (ms *MetricStoreImpl) getDataInsertQuery() string {
	quotedTableName := quoteTableName(dataTable, ms.backend)
	switch ms.backend {
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (metric_key, seq, record_time, raw_value, display_value) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (metric_key, seq) DO NOTHING`, quotedTableName)

	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT IGNORE INTO %s (metric_key, seq, record_time, raw_value, display_value) VALUES (?, ?, ?, ?, ?)`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR IGNORE INTO %s (metric_key, seq, record_time, raw_value, display_value) VALUES (?, ?, ?, ?, ?)`, quotedTableName)
	}
}

// placeholder returns the parameter placeholder for position n.
func (ms *MetricStoreImpl) placeholder(n int) string {
	switch ms.backend {
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("$%d", n)
	default: // SQLite and MySQL
		return "?"
	}
}

// Close closes the underlying DB connection.
func (ms *MetricStoreImpl) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

// GetStatus returns status information about the metric store.
func (ms *MetricStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(ms.backend),
		Connected: ms.db != nil,
	}

	if ms.backend == schema.NoneBackend || ms.db == nil {
		return status, nil
	}

	quotedStats := quoteTableName(statsTable, ms.backend)
	quotedData := quoteTableName(dataTable, ms.backend)

	row := ms.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedStats))
	if err := row.Scan(&status.StatsEntries); err != nil {
		return status, fmt.Errorf("failed to count stats entries: %w", err)
	}

	row = ms.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedData))
	if err := row.Scan(&status.DataRows); err != nil {
		return status, fmt.Errorf("failed to count data rows: %w", err)
	}

	if status.StatsEntries > 0 {
		row = ms.db.QueryRow(fmt.Sprintf("SELECT MAX(created_at) FROM %s", quotedStats))
		var lastTs int64
		if err := row.Scan(&lastTs); err != nil {
			return status, fmt.Errorf("failed to get last write time: %w", err)
		}
		status.LastWrite = time.Unix(lastTs, 0)
	}

	return status, nil
}

// quoteTableName quotes a table identifier for the given backend.
func quoteTableName(tableName string, backend schema.DatabaseBackend) string {
	if !tableNamePattern.MatchString(tableName) {
		// Constructor-validated names never hit this; keep queries well-formed anyway.
		return tableName
	}
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", tableName)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", tableName)
	}
}
