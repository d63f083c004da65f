package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docpilot/docpilot/db"
	"github.com/docpilot/docpilot/internal/app"
	"github.com/docpilot/docpilot/internal/config"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Embed the documentation tree into the database",
	Long: `index walks the docs tree, splits every markdown file into sections
at heading boundaries and stores one embedding per section. Pages whose
content is unchanged since the last run are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return runIndex(path)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if path != "" {
		cfg.DocsPath = path
	}
	if err := cfg.ValidateIngest(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	// Migrations run first so a fresh database works out of the box.
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	result, err := a.NewPipeline().Run(ctx, cfg.DocsPath)
	if err != nil {
		return fmt.Errorf("indexing docs: %w", err)
	}

	slog.Info("indexing complete",
		"pages", result.Pages,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"sections", result.Sections,
	)
	if result.Failed > 0 {
		return fmt.Errorf("%d page(s) failed to index", result.Failed)
	}
	return nil
}
