package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lordwhitefire/new-portfolio/internal/app"
	"github.com/lordwhitefire/new-portfolio/internal/config"
	"github.com/lordwhitefire/new-portfolio/internal/observability"
)

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "Render the CMS-backed portfolio site",
	Long: `hydrate fills the static page templates with content from the CMS.
It can build the whole site into a directory, publish a build to
Cloud Storage, and run single queries against the content endpoint.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with SITE_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		_ = os.Setenv("LOG_LEVEL", "debug")
	}
	logger, err := observability.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("initialise logger: %w", err)
	}
	return logger.Named("hydrate"), nil
}

// loadApp returns a context carrying the logger plus the wired application.
func loadApp(cmd *cobra.Command) (context.Context, *app.App, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	ctx := observability.WithLogger(cmd.Context(), logger)
	a, err := app.Load(ctx, logger, config.WithEnvFile(envFile))
	if err != nil {
		return nil, nil, err
	}
	return ctx, a, nil
}
