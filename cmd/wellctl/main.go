// Command wellctl is the operator CLI for the wellness service: schema
// migration, tag backfill and offline checks of tag suggestion and category
// classification.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/wellness-service/internal/platform/config"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	profile  string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "wellctl",
		Short:         "Operate the wellness service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultProfile := os.Getenv("APP_ENVIRONMENT")
	if defaultProfile == "" {
		defaultProfile = "local"
	}

	root.PersistentFlags().StringVar(&g.profile, "profile", defaultProfile, "config profile (configs/<profile>.yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		migrateCmd(g),
		retagCmd(g),
		suggestTagsCmd(),
		classifyCmd(g),
	)

	return root
}

// load reads .env and the configuration profile and builds a text logger on
// stderr so command output on stdout stays clean.
func (g *globals) load() (*config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(g.profile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   g.logLevel,
		Format:  "text",
		Service: "wellctl",
		Version: cfg.App.Version,
	}, os.Stderr)

	return cfg, logger, nil
}
