// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.schoolmind/config.yaml)
//  3. Default values
//
// Security: sensitive data (passwords, API keys) is never logged; the
// config directory uses 0750 permissions.
//
// Error handling uses sentinel errors for Go-idiomatic checking with
// errors.Is(), wrapped via fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates the Gemini API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxToolRounds indicates the tool-round cap is out of range.
	ErrInvalidMaxToolRounds = errors.New("invalid max tool rounds")

	// ErrInvalidHistoryWindow indicates the history window is out of range.
	ErrInvalidHistoryWindow = errors.New("invalid history window")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

const (
	// DefaultModelName is the default Gemini model for conversation turns.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultMaxToolRounds bounds the tool-call cycle per turn. The cap
	// exists to contain runaway tool chains against a variable model
	// response and to bound latency and cost per request.
	DefaultMaxToolRounds = 3

	// DefaultHistoryWindow is the number of prior messages supplied to
	// the model as conversational memory.
	DefaultHistoryWindow int32 = 10

	// MaxHistoryWindow is the absolute maximum window size.
	MaxHistoryWindow int32 = 200
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	ModelName    string `mapstructure:"model_name"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"` // SENSITIVE: never logged

	// Conversation configuration
	MaxToolRounds int   `mapstructure:"max_tool_rounds"`
	HistoryWindow int32 `mapstructure:"history_window"`

	// HTTP server configuration
	Addr string `mapstructure:"addr"`

	// Storage configuration (see storage.go for DSN builders)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"` // debug | info | warn | error
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".schoolmind")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("max_tool_rounds", DefaultMaxToolRounds)
	v.SetDefault("history_window", DefaultHistoryWindow)

	v.SetDefault("addr", "127.0.0.1:3600")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "schoolmind")
	v.SetDefault("postgres_password", "schoolmind_dev_password")
	v.SetDefault("postgres_db_name", "schoolmind")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variables explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("model_name", "SCHOOLMIND_MODEL_NAME")
	mustBind("addr", "SCHOOLMIND_ADDR")
	mustBind("max_tool_rounds", "SCHOOLMIND_MAX_TOOL_ROUNDS")
	mustBind("history_window", "SCHOOLMIND_HISTORY_WINDOW")
	mustBind("log_level", "SCHOOLMIND_LOG_LEVEL")
	mustBind("log_json", "SCHOOLMIND_LOG_JSON")
}

// SlogLevel maps the configured log level string to a slog.Level.
// Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
