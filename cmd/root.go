// Package cmd provides the docpilot CLI.
//
// Commands:
//   - index: segment markdown docs, embed changed pages, store vectors
//   - ask: answer a question against the indexed docs
//   - serve: HTTP API server exposing POST /api
//   - migrate: apply database migrations
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docpilot/docpilot/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "docpilot",
	Short: "Answer questions from your project documentation",
	Long: `docpilot indexes a tree of markdown documentation into PostgreSQL
with pgvector embeddings, then answers questions about it using
retrieval-augmented generation.

Typical flow:

  docpilot migrate      apply database migrations
  docpilot index        embed the docs tree
  docpilot ask "..."    ask a one-off question
  docpilot serve        expose the query API over HTTP`,
	SilenceUsage: true,
}

// Execute runs the root command. The logger is configured once here so
// every subcommand inherits it.
func Execute() error {
	logger := log.New(log.Config{
		Level: logLevel(),
		JSON:  os.Getenv("DOCPILOT_LOG_JSON") != "",
	})
	slog.SetDefault(logger)

	return rootCmd.Execute()
}

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
