// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Resolver match policies.
const (
	MatchPolicyFirst   = "first"
	MatchPolicyLongest = "longest"
)

// LogConfig controls the logrus adapter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig controls how uploads are read and previews exported.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" yaml:"driver"`
	DSN         string `mapstructure:"dsn" yaml:"-"`
	AutoMigrate bool   `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// IngestConfig holds extraction defaults.
type IngestConfig struct {
	DefaultCurrency string `mapstructure:"default_currency" yaml:"default_currency"`
	PreviewDir      string `mapstructure:"preview_dir" yaml:"preview_dir"`
}

// CategorizationConfig controls the mapping resolver.
type CategorizationConfig struct {
	MatchPolicy string `mapstructure:"match_policy" yaml:"match_policy"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
	Mode    string `mapstructure:"mode" yaml:"mode"`
}

// Config represents the complete application configuration
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	CSV            CSVConfig            `mapstructure:"csv" yaml:"csv"`
	Database       DatabaseConfig       `mapstructure:"database" yaml:"database"`
	Ingest         IngestConfig         `mapstructure:"ingest" yaml:"ingest"`
	Categorization CategorizationConfig `mapstructure:"categorization" yaml:"categorization"`
	Server         ServerConfig         `mapstructure:"server" yaml:"server"`
}

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// InitializeConfig loads defaults, then config.yaml / sms-ledger.yaml, then SMSLEDGER_* variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("sms-ledger")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.sms-ledger")
	v.AddConfigPath(".sms-ledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SMSLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// DATABASE_URL is honoured unprefixed, the way hosted Postgres providers expose it.
	if err := v.BindEnv("database.dsn", "SMSLEDGER_DATABASE_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database dsn: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Ingest.DefaultCurrency = strings.ToUpper(config.Ingest.DefaultCurrency)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "sms-ledger.db")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("ingest.default_currency", "LKR")
	v.SetDefault("ingest.preview_dir", "previews")

	v.SetDefault("categorization.match_policy", MatchPolicyFirst)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	switch config.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %s (must be '%s' or '%s')",
			config.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if strings.TrimSpace(config.Database.DSN) == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}

	if !currencyCode.MatchString(config.Ingest.DefaultCurrency) {
		return fmt.Errorf("ingest.default_currency must be a 3-letter code, got: %s", config.Ingest.DefaultCurrency)
	}

	switch config.Categorization.MatchPolicy {
	case MatchPolicyFirst, MatchPolicyLongest:
	default:
		return fmt.Errorf("categorization.match_policy must be '%s' or '%s', got: %s",
			MatchPolicyFirst, MatchPolicyLongest, config.Categorization.MatchPolicy)
	}

	switch config.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got: %s", config.Server.Mode)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}
