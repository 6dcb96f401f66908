package metricstore

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mfeldman/modelfeed/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateStoreSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	// Migrate up to the latest version.
	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, table := range []string{statsTable, dataTable} {
		var name string
		row := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		require.NoError(t, row.Scan(&name), "expected table %s to exist", table)
	}

	// Re-running is a no-op, not an error.
	assert.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))

	// Roll everything back.
	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 0))
	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN (?, ?)", statsTable, dataTable)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 0, count)
}

func TestMigrateStoreNoneBackend(t *testing.T) {
	err := MigrateStore(schema.NoneBackend, "", -1)
	assert.Error(t, err)
}
