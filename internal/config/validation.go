package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey indicates the OpenAI API key is not set.
	ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")

	// ErrMissingDocsPath indicates the documentation root is not set.
	ErrMissingDocsPath = errors.New("missing docs path")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates an unknown sslmode value.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidMatchThreshold indicates the similarity threshold is out of (0, 1].
	ErrInvalidMatchThreshold = errors.New("invalid match threshold")

	// ErrInvalidMatchCount indicates a non-positive match count.
	ErrInvalidMatchCount = errors.New("invalid match count")

	// ErrInvalidTokenBudget indicates a non-positive context token budget.
	ErrInvalidTokenBudget = errors.New("invalid context token budget")

	// ErrInvalidEmbedInterval indicates a negative embedding-call interval.
	ErrInvalidEmbedInterval = errors.New("invalid embed interval")
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration shared by every command. It fails fast
// before any network I/O.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: set the OPENAI_API_KEY environment variable", ErrMissingAPIKey)
	}

	if c.PostgresHost == "" {
		return ErrInvalidPostgresHost
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return ErrInvalidPostgresDBName
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("%w: %v (must be in (0, 1])", ErrInvalidMatchThreshold, c.MatchThreshold)
	}
	if c.MatchCount < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidMatchCount, c.MatchCount)
	}
	if c.ContextTokenBudget < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidTokenBudget, c.ContextTokenBudget)
	}
	if c.EmbedIntervalMS < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidEmbedInterval, c.EmbedIntervalMS)
	}

	return nil
}

// ValidateIngest additionally requires the documentation root, which only
// the ingestion pipeline needs.
func (c *Config) ValidateIngest() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocsPath == "" {
		return fmt.Errorf("%w: set docs_path or DOCPILOT_DOCS_PATH", ErrMissingDocsPath)
	}
	return nil
}
