package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/ogimage/internal/app"
	"github.com/JakeFAU/ogimage/internal/config"
	"github.com/JakeFAU/ogimage/internal/id/uuid"
	"github.com/JakeFAU/ogimage/internal/logging"
)

// Runner is the slice of *app.App the command needs. It lets tests swap in
// an app built with fake collaborators.
type Runner interface {
	Run(ctx context.Context, args []string, out io.Writer) error
}

type appRunner struct {
	*app.App
}

func (r appRunner) Run(ctx context.Context, args []string, out io.Writer) error {
	_, err := r.App.Run(ctx, args, out)
	return err
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(cfg config.Config, logger *zap.Logger) (Runner, error) {
	a, err := app.New(cfg, logger, app.Deps{})
	if err != nil {
		return nil, err
	}
	return appRunner{a}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "ogimage [product-url]",
		Short: "Resolve and open the preview image of a product page",
		Long: `ogimage fetches a product page once and reads its og:image meta tag.
When the page cannot be fetched or has no tag it falls back to the image
pipeline's cache file, then to a fixed demo image. The result is printed
and opened in the default browser.

Without a URL argument the first link in the product dataset CSV is used.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfgFile, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml, json, or toml)")

	return cmd
}

func run(ctx context.Context, cfgFile string, args []string, out io.Writer) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	runID, err := uuid.New().NewID()
	if err != nil {
		logger.Warn("Failed to generate run id", zap.Error(err))
	} else {
		logger = logger.With(zap.String("run_id", runID))
	}

	a, err := newApp(cfg, logger.Named("ogimage"))
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	return a.Run(ctx, args, out)
}
