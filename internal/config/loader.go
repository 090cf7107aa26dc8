package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "SHIFTPAY"

// Loader handles loading configuration from multiple sources
type Loader struct {
	v          *viper.Viper
	configFile string
	envFiles   []string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, NewConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// WithConfigFile makes the loader read an explicit YAML file. A missing
// explicit file is an error, unlike the default ~/.shiftpay/config.yaml.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvFiles replaces the dotenv files consulted before reading the environment.
func (l *Loader) WithEnvFiles(paths ...string) *Loader {
	l.envFiles = paths
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, if any
// 3. Override with SHIFTPAY_* environment variables (.env files included)
// 4. Override with command line flags (see LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	// Existing environment variables win over .env entries.
	_ = godotenv.Load(l.envFiles...)

	if err := l.readConfigFile(); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := l.v.Unmarshal(config, decoderOption()); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) readConfigFile() error {
	path := l.configFile
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPrefix + "_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = filepath.Join(DefaultDir(), "config.yaml")
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

func decoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.sqlite_filename", d.Storage.SQLiteFilename)
	v.SetDefault("storage.bolt_filename", d.Storage.BoltFilename)
	v.SetDefault("storage.redis_url", d.Storage.RedisURL)
	v.SetDefault("storage.redis_namespace", d.Storage.RedisNamespace)
	v.SetDefault("storage.query_timeout", d.Storage.QueryTimeout)
	v.SetDefault("storage.dir_permissions", d.Storage.DirPermissions)

	v.SetDefault("remote.base_url", d.Remote.BaseURL)
	v.SetDefault("remote.token", d.Remote.Token)
	v.SetDefault("remote.timeout", d.Remote.Timeout)
	v.SetDefault("remote.breaker_max_failures", d.Remote.BreakerMaxFailures)
	v.SetDefault("remote.breaker_timeout", d.Remote.BreakerTimeout)

	v.SetDefault("shifts.billable_policy", d.Shifts.BillablePolicy)
	v.SetDefault("shifts.currency", d.Shifts.Currency)
	v.SetDefault("shifts.locale", d.Shifts.Locale)

	v.SetDefault("display.time_format", d.Display.TimeFormat)
	v.SetDefault("display.date_format", d.Display.DateFormat)
	v.SetDefault("display.color", d.Display.Color)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.json", d.Logging.JSON)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)

	v.SetDefault("application.timeout", d.Application.Timeout)
	v.SetDefault("application.verbose", d.Application.Verbose)

	v.SetDefault("validation.workplace_max_length", d.Validation.WorkplaceMaxLength)
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Storage overrides
	Driver     *string
	StorageDir *string
	RedisURL   *string

	// Remote overrides
	RemoteURL   *string
	RemoteToken *string

	// Shift overrides
	BillablePolicy *string
	Currency       *string

	// Display overrides
	NoColor *bool

	// Logging overrides
	LogLevel *string
	LogFile  *string

	// Application overrides
	Timeout *time.Duration
	Verbose *bool
}

// Apply copies every set override onto config
func (o *ConfigOverrides) Apply(config *Config) {
	if o.Driver != nil {
		config.Storage.Driver = *o.Driver
	}
	if o.StorageDir != nil {
		config.Storage.Dir = *o.StorageDir
	}
	if o.RedisURL != nil {
		config.Storage.RedisURL = *o.RedisURL
	}

	if o.RemoteURL != nil {
		config.Remote.BaseURL = *o.RemoteURL
	}
	if o.RemoteToken != nil {
		config.Remote.Token = *o.RemoteToken
	}

	if o.BillablePolicy != nil {
		config.Shifts.BillablePolicy = *o.BillablePolicy
	}
	if o.Currency != nil {
		config.Shifts.Currency = strings.ToUpper(*o.Currency)
	}

	if o.NoColor != nil && *o.NoColor {
		config.Display.Color = false
	}

	if o.LogLevel != nil {
		config.Logging.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		config.Logging.File = *o.LogFile
	}

	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
	}
}
