// Package config provides application configuration with multi-source
// priority.
//
// Sources, highest to lowest:
//  1. Environment variables (OPENAI_API_KEY, DATABASE_URL, DOCPILOT_*)
//  2. Config file (~/.docpilot/config.yaml or ./config.yaml)
//  3. Defaults
//
// Validation is fail-fast: Load returns a configuration error before any
// network call is attempted. Sensitive values are never logged.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Policy defaults preserved from the system's original behavior; all are
// overridable via configuration.
const (
	DefaultMatchThreshold     = 0.78
	DefaultMatchCount         = 15
	DefaultMinContentLength   = 50
	DefaultContextTokenBudget = 2500
	DefaultEmbedIntervalMS    = 500

	DefaultHTTPAddr = "127.0.0.1:3400"
)

// Config stores application configuration.
type Config struct {
	// OpenAI provider
	OpenAIAPIKey   string `mapstructure:"openai_api_key"` // SENSITIVE: never log
	EmbeddingModel string `mapstructure:"embedding_model"`
	ChatModel      string `mapstructure:"chat_model"`

	// PostgreSQL storage
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never log
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Ingestion
	DocsPath        string `mapstructure:"docs_path"`
	DocsSource      string `mapstructure:"docs_source"`
	EmbedIntervalMS int    `mapstructure:"embed_interval_ms"`

	// Retrieval
	MatchThreshold     float64 `mapstructure:"match_threshold"`
	MatchCount         int     `mapstructure:"match_count"`
	MinContentLength   int     `mapstructure:"min_content_length"`
	ContextTokenBudget int     `mapstructure:"context_token_budget"`

	// HTTP server
	HTTPAddr string `mapstructure:"http_addr"`
}

// EmbedInterval returns the configured spacing between embedding calls.
func (c *Config) EmbedInterval() time.Duration {
	return time.Duration(c.EmbedIntervalMS) * time.Millisecond
}

// Load loads configuration with env > file > defaults priority and
// validates it.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".docpilot")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("embedding_model", "text-embedding-ada-002")
	viper.SetDefault("chat_model", "gpt-3.5-turbo-16k")

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "docpilot")
	viper.SetDefault("postgres_password", "docpilot_dev_password")
	viper.SetDefault("postgres_db_name", "docpilot")
	viper.SetDefault("postgres_ssl_mode", "disable")

	viper.SetDefault("docs_source", "guide")
	viper.SetDefault("embed_interval_ms", DefaultEmbedIntervalMS)

	viper.SetDefault("match_threshold", DefaultMatchThreshold)
	viper.SetDefault("match_count", DefaultMatchCount)
	viper.SetDefault("min_content_length", DefaultMinContentLength)
	viper.SetDefault("context_token_budget", DefaultContextTokenBudget)

	viper.SetDefault("http_addr", DefaultHTTPAddr)
}

// bindEnvVariables binds environment variables explicitly. DATABASE_URL is
// handled separately in parseDatabaseURL.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("openai_api_key", "OPENAI_API_KEY")
	mustBind("docs_path", "DOCPILOT_DOCS_PATH")
	mustBind("docs_source", "DOCPILOT_DOCS_SOURCE")
	mustBind("http_addr", "DOCPILOT_HTTP_ADDR")
	mustBind("embedding_model", "DOCPILOT_EMBEDDING_MODEL")
	mustBind("chat_model", "DOCPILOT_CHAT_MODEL")
}
