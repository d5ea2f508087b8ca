package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/spectrumgame-go/internal/api"
	"github.com/mcoot/spectrumgame-go/internal/config"
	"github.com/mcoot/spectrumgame-go/internal/factory"
	"github.com/mcoot/spectrumgame-go/internal/logging"
	"github.com/mcoot/spectrumgame-go/internal/sse"
)

func main() {
	var opts config.Options

	cmd := &cobra.Command{
		Use:   "spectrum-server",
		Short: "Serve the shared room store for spectrum clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Flags = cmd.Flags()
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (yaml, json or toml)")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	config.RegisterFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts config.Options) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	// Set up logging
	logger, logs, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if app.HubManager != nil {
		go cleanupHubs(ctx, app.HubManager, cfg.SSE.CleanupInterval, logger)
	}

	server := api.NewServer(app.Handler, cfg.Server, logger)
	if err := server.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		return err
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
		slog.Bool("sse", app.HubManager != nil))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

// cleanupHubs drops event hubs nobody is listening to
func cleanupHubs(ctx context.Context, hm *sse.HubManager, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := hm.CleanupEmptyHubs(); n > 0 {
				logger.Debug("removed idle event hubs", slog.Int("count", n))
			}
		}
	}
}
