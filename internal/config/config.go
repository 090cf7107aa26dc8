package config

import (
	"os"
	"path/filepath"
	"time"
)

// Storage drivers understood by the persistence layer.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Billable policies for shifts whose unpaid breaks exceed the worked time.
const (
	BillableClamp  = "clamp"
	BillableReject = "reject"
)

// Config holds all configuration options for shiftpay
type Config struct {
	Storage     StorageConfig     `mapstructure:"storage"`
	Remote      RemoteConfig      `mapstructure:"remote"`
	Shifts      ShiftsConfig      `mapstructure:"shifts"`
	Display     DisplayConfig     `mapstructure:"display"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Application ApplicationConfig `mapstructure:"application"`
	Validation  ValidationConfig  `mapstructure:"validation"`
}

// StorageConfig selects and configures the local persistence backend
type StorageConfig struct {
	Driver         string        `mapstructure:"driver"`
	Dir            string        `mapstructure:"dir"`
	SQLiteFilename string        `mapstructure:"sqlite_filename"`
	BoltFilename   string        `mapstructure:"bolt_filename"`
	RedisURL       string        `mapstructure:"redis_url"`
	RedisNamespace string        `mapstructure:"redis_namespace"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	DirPermissions uint32        `mapstructure:"dir_permissions"`
}

// RemoteConfig holds settings for the authenticated remote API
type RemoteConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Token              string        `mapstructure:"token"`
	Timeout            time.Duration `mapstructure:"timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
}

// ShiftsConfig holds pay calculation settings
type ShiftsConfig struct {
	BillablePolicy string `mapstructure:"billable_policy"`
	Currency       string `mapstructure:"currency"`
	Locale         string `mapstructure:"locale"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat string `mapstructure:"time_format"`
	DateFormat string `mapstructure:"date_format"`
	Color      bool   `mapstructure:"color"`
}

// LoggingConfig holds log level and optional rotating file output
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	JSON       bool   `mapstructure:"json"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Verbose bool          `mapstructure:"verbose"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	WorkplaceMaxLength int `mapstructure:"workplace_max_length"`
}

// DefaultDir returns the per-user directory holding data and config files
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".shiftpay")
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:         DriverSQLite,
			Dir:            DefaultDir(),
			SQLiteFilename: "shiftpay.db",
			BoltFilename:   "shiftpay.bolt",
			RedisURL:       "redis://localhost:6379/0",
			RedisNamespace: "shiftpay",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		Remote: RemoteConfig{
			Timeout:            15 * time.Second,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Shifts: ShiftsConfig{
			BillablePolicy: BillableClamp,
			Currency:       "EUR",
			Locale:         "en",
		},
		Display: DisplayConfig{
			TimeFormat: "2006-01-02 15:04",
			DateFormat: "2006-01-02",
			Color:      true,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
		Validation: ValidationConfig{
			WorkplaceMaxLength: 255,
		},
	}
}

// GetSQLitePath returns the full path to the SQLite database file
func (c *Config) GetSQLitePath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.SQLiteFilename)
}

// GetBoltPath returns the full path to the Bolt database file
func (c *Config) GetBoltPath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.BoltFilename)
}

// GetQueryTimeout returns the storage query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Storage.QueryTimeout
}

// IsRemoteEnabled reports whether a remote API endpoint and credentials are configured
func (c *Config) IsRemoteEnabled() bool {
	return c.Remote.BaseURL != "" && c.Remote.Token != ""
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverBolt, DriverMemory:
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			return &ConfigError{Field: "storage.redis_url", Message: "redis url cannot be empty when driver is redis"}
		}
	default:
		return &ConfigError{Field: "storage.driver", Message: "driver must be one of sqlite, bolt, redis, memory"}
	}
	if c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
	}
	if c.Storage.SQLiteFilename == "" {
		return &ConfigError{Field: "storage.sqlite_filename", Message: "sqlite filename cannot be empty"}
	}
	if c.Storage.BoltFilename == "" {
		return &ConfigError{Field: "storage.bolt_filename", Message: "bolt filename cannot be empty"}
	}
	if c.Storage.QueryTimeout <= 0 {
		return &ConfigError{Field: "storage.query_timeout", Message: "query timeout must be positive"}
	}

	if c.Remote.Token != "" && c.Remote.BaseURL == "" {
		return &ConfigError{Field: "remote.base_url", Message: "base url is required when a token is set"}
	}
	if c.Remote.Timeout <= 0 {
		return &ConfigError{Field: "remote.timeout", Message: "remote timeout must be positive"}
	}
	if c.Remote.BreakerMaxFailures == 0 {
		return &ConfigError{Field: "remote.breaker_max_failures", Message: "breaker failure threshold must be at least 1"}
	}

	if c.Shifts.BillablePolicy != BillableClamp && c.Shifts.BillablePolicy != BillableReject {
		return &ConfigError{Field: "shifts.billable_policy", Message: "billable policy must be clamp or reject"}
	}
	if len(c.Shifts.Currency) != 3 {
		return &ConfigError{Field: "shifts.currency", Message: "currency must be a 3-letter ISO 4217 code"}
	}

	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	if c.Validation.WorkplaceMaxLength < 1 {
		return &ConfigError{Field: "validation.workplace_max_length", Message: "workplace max length must be at least 1"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
