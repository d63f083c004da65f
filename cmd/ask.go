package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/docpilot/docpilot/internal/answer"
	"github.com/docpilot/docpilot/internal/app"
	"github.com/docpilot/docpilot/internal/config"
)

var askPlain bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documentation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "print the raw answer without terminal rendering")
	rootCmd.AddCommand(askCmd)
}

func runAsk(question string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	svc, err := a.NewAnswerService()
	if err != nil {
		return fmt.Errorf("creating answer service: %w", err)
	}

	message, err := svc.Answer(ctx, question, nil)
	if err != nil {
		if errors.Is(err, answer.ErrNoResults) {
			fmt.Println("No relevant documentation sections found for that question.")
			return nil
		}
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Print(renderAnswer(message))
	return nil
}

// renderAnswer formats the markdown answer for the terminal, falling back
// to the raw text if rendering fails.
func renderAnswer(message string) string {
	if askPlain {
		return message + "\n"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return message + "\n"
	}
	out, err := r.Render(message)
	if err != nil {
		return message + "\n"
	}
	return out
}
