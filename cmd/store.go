package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfeldman/modelfeed/core"
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/metricstore"
	"github.com/mfeldman/modelfeed/internal/outwriter"
	"github.com/mfeldman/modelfeed/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the store with the loaded config
	if err := metricstore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")

	// Models are needed by the export command to derive metric keys.
	if err := viper.UnmarshalKey("models", &cfg.Models); err != nil {
		return fmt.Errorf("unable to unmarshal models: %w", err)
	}

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for migrate command.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on metric store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by streaming commands. This avoids model validation
// and complex config processing for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the metric store (cached stats and streamed rows)",
	Long: `Manage the metric store that backs stats resolution and data replay.

Modelfeed caches resolved metric bounds and streamed timeseries rows so
repeated runs never re-read source files.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all cached data
  export  - Export cached data to Parquet for analytics
  migrate - Run database schema migrations

Examples:
  # Check store status
  modelfeed store status

  # Clear the store after source files changed
  modelfeed store clear`,
}

// storeClearCmd clears the metric store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached stats and streamed rows",
	Long: `Delete all cached metric bounds and timeseries rows from the configured backend.

Use this when:
- Source files were regenerated or replaced
- Cached data may be stale or corrupted
- Testing streaming without the cache

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the store tables

Examples:
  # Clear SQLite store (default)
  modelfeed store clear

  # Clear MySQL store (set connection string via env variable)
  MODELFEED_STORE_BACKEND=mysql MODELFEED_STORE_DB_CONNECT="..." modelfeed store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// For SQLite, the connection string overrides the default file path.
		dbFilePath := metricstore.GetDBFilePath()
		if cfg.StoreBackend == schema.SQLiteBackend && cfg.StoreDBConnect != "" {
			dbFilePath = cfg.StoreDBConnect
		}
		if err := metricstore.ClearStore(cfg.StoreBackend, dbFilePath, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the metric store.

Displays:
- Backend type and connection status
- Number of cached stats entries and data rows
- Timestamp of the last write

Examples:
  # Check store status
  modelfeed store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetMetricStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.NewOutWriter().WriteStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write store status", err)
		}
	},
}

// storeExportCmd exports cached data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached data to Parquet for BI tools and analytics",
	Long: `Export cached stats and timeseries rows to Parquet format.

Exports two datasets:
- Stats - resolved min/max bounds per model metric
- Data rows - every cached timeseries record

Requires: --output-file parameter

Examples:
  # Export all cached data
  modelfeed store export --output-file modelfeed-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('modelfeed-data.data.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(cfg.Models, storeManager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the metric store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the metric store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  modelfeed store migrate

  # Migrate to specific version
  modelfeed store migrate --target-version 1

  # Rollback to previous version
  modelfeed store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := metricstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
