// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"uhb/trade-ledger/internal/backing"
)

// EnvPrefix is prepended to every environment override, e.g. LEDGER_STORAGE_BACKEND.
const EnvPrefix = "LEDGER"

// DefaultCapacityBytes mirrors the usual 5 MiB browser storage quota.
const DefaultCapacityBytes = 5 * 1024 * 1024

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Storage struct {
		Backend       string `mapstructure:"backend" yaml:"backend"`
		Path          string `mapstructure:"path" yaml:"path"`
		CapacityBytes int64  `mapstructure:"capacity_bytes" yaml:"capacity_bytes"`
	} `mapstructure:"storage" yaml:"storage"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Catalog struct {
		DefaultsFile string `mapstructure:"defaults_file" yaml:"defaults_file"`
	} `mapstructure:"catalog" yaml:"catalog"`

	Inventory struct {
		LowStockDefault int `mapstructure:"low_stock_default" yaml:"low_stock_default"`
	} `mapstructure:"inventory" yaml:"inventory"`
}

// InitializeConfig loads configuration from the standard locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load builds the configuration: defaults, then the config file, then
// LEDGER_* environment variables. An explicit configFile must exist; the
// standard locations are optional.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.trade-ledger")
		v.AddConfigPath(".trade-ledger")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the built-in configuration, ignoring config files and
// the environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("built-in configuration is invalid: %v", err))
	}
	return &config
}

// DefaultDataDir is where the file and sqlite backends keep their data
// unless storage.path says otherwise.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".trade-ledger", "data")
	}
	return filepath.Join(home, ".trade-ledger", "data")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.backend", string(backing.KindFile))
	v.SetDefault("storage.path", DefaultDataDir())
	v.SetDefault("storage.capacity_bytes", DefaultCapacityBytes)

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("catalog.defaults_file", "")

	v.SetDefault("inventory.low_stock_default", 50)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	kind, err := backing.ParseKind(config.Storage.Backend)
	if err != nil {
		return err
	}
	config.Storage.Backend = string(kind)

	if kind != backing.KindMemory && strings.TrimSpace(config.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required for the %s backend", kind)
	}

	if config.Storage.CapacityBytes < 0 {
		return fmt.Errorf("storage.capacity_bytes must not be negative, got: %d", config.Storage.CapacityBytes)
	}

	if utf8.RuneCountInString(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Inventory.LowStockDefault < 0 {
		return fmt.Errorf("inventory.low_stock_default must not be negative, got: %d", config.Inventory.LowStockDefault)
	}

	return nil
}

// Kind returns the validated storage backend.
func (c *Config) Kind() backing.Kind {
	return backing.Kind(c.Storage.Backend)
}

// StoragePath is the directory for the file backend and the database file
// for sqlite. A sqlite path without an extension is treated as a directory.
func (c *Config) StoragePath() string {
	if c.Kind() == backing.KindSQLite && filepath.Ext(c.Storage.Path) == "" {
		return filepath.Join(c.Storage.Path, "ledger.db")
	}
	return c.Storage.Path
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// Validate re-checks c, e.g. after command-line overrides were applied.
func (c *Config) Validate() error {
	return validateConfig(c)
}
