package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfeldman/modelfeed/schema"
)

// Default values for configuration.
const (
	DefaultTimestampField = "timestamp"
	DefaultMQTTBroker     = "tcp://localhost:1883"
	DefaultMQTTQoS        = 1
	DefaultPrecision      = 2
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the validated runtime configuration.
type Config struct {
	DataDir string         // Base directory resolved against relative source files
	Models  []schema.Model // Declared models, unique by ID

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Sink         schema.SinkKind
	MQTTBroker   string
	MQTTClientID string
	MQTTQoS      byte

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)

	UseColors bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	DataDir        string         `mapstructure:"data-dir"`
	Models         []schema.Model `mapstructure:"models"`
	StoreBackend   string         `mapstructure:"store-backend"`
	StoreDBConnect string         `mapstructure:"store-db-connect"`
	Sink           string         `mapstructure:"sink"`
	MQTTBroker     string         `mapstructure:"mqtt-broker"`
	MQTTClientID   string         `mapstructure:"mqtt-client-id"`
	MQTTQoS        int            `mapstructure:"mqtt-qos"`
	Output         string         `mapstructure:"output"`
	OutputFile     string         `mapstructure:"output-file"`
	Precision      int            `mapstructure:"precision"`
	Width          int            `mapstructure:"width"`
	Color          string         `mapstructure:"color"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Models != nil {
		clone.Models = make([]schema.Model, len(c.Models))
		copy(clone.Models, c.Models)
	}
	return &clone
}

// ModelByID returns the declared model with the given identifier.
func (c *Config) ModelByID(id string) (schema.Model, error) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, nil
		}
	}
	return schema.Model{}, fmt.Errorf("unknown model %q. Declare it under 'models' in the config file", id)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateStoreInputs(cfg, input); err != nil {
		return err
	}
	if err := validateSinkInputs(cfg, input); err != nil {
		return err
	}
	return validateModels(cfg, input)
}

// validateSimpleInputs processes all output and display related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output mode '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.Precision = input.Precision
	if cfg.Precision < 0 || cfg.Precision > 6 {
		cfg.Precision = DefaultPrecision
	}

	switch strings.ToLower(input.Color) {
	case "no", "false", "0":
		cfg.UseColors = false
	default:
		cfg.UseColors = true
	}

	dataDir := input.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("cannot resolve data directory %q: %w", dataDir, err)
	}
	cfg.DataDir = abs
	return nil
}

// validateStoreInputs validates the metric store backend configuration.
func validateStoreInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSinkInputs validates the downstream sink configuration.
func validateSinkInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Sink = schema.SinkKind(strings.ToLower(input.Sink))
	if cfg.Sink == "" {
		cfg.Sink = schema.StdoutSink
	}
	if _, ok := schema.ValidSinkKinds[cfg.Sink]; !ok {
		return fmt.Errorf("invalid sink '%s'. must be stdout or mqtt", input.Sink)
	}

	cfg.MQTTBroker = input.MQTTBroker
	if cfg.MQTTBroker == "" {
		cfg.MQTTBroker = DefaultMQTTBroker
	}
	// An empty client id is allowed; the sink generates a unique one.
	cfg.MQTTClientID = input.MQTTClientID
	if input.MQTTQoS < 0 || input.MQTTQoS > 2 {
		return fmt.Errorf("invalid mqtt-qos %d. must be 0, 1, or 2", input.MQTTQoS)
	}
	cfg.MQTTQoS = byte(input.MQTTQoS)
	return nil
}

// validateModels checks the declared models for completeness and unique IDs.
func validateModels(cfg *Config, input *ConfigRawInput) error {
	seen := make(map[string]struct{}, len(input.Models))
	models := make([]schema.Model, 0, len(input.Models))

	for i, m := range input.Models {
		if m.ID == "" {
			return fmt.Errorf("model at index %d is missing an id", i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate model id %q", m.ID)
		}
		seen[m.ID] = struct{}{}

		if m.SourceFile == "" {
			return fmt.Errorf("model %q is missing source_file", m.ID)
		}
		if m.MetricField == "" {
			return fmt.Errorf("model %q is missing metric_field", m.ID)
		}
		if m.TimestampField == "" {
			m.TimestampField = DefaultTimestampField
		}
		models = append(models, m)
	}

	cfg.Models = models
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the metric store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".modelfeed_store.db"
	}
	return filepath.Join(homeDir, ".modelfeed_store.db")
}
