// Package main is the entry point for the meteopoll polling daemon.
//
// It loads the configuration, constructs the upstream client and the fetch
// coordinator, performs an initial refresh, starts the periodic refresh
// runner, and serves the HTTP API. Graceful shutdown is handled via OS
// signal interception (SIGINT, SIGTERM).
//
// A failed initial refresh does not abort startup: the service comes up with
// no data and keeps retrying on the configured cadence until a cycle
// succeeds.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meteopoll/internal/api"
	"meteopoll/internal/config"
	"meteopoll/internal/coordinator"
	"meteopoll/internal/meteomatics"
	"meteopoll/internal/scheduler"
	"meteopoll/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("meteopoll starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"plan_type", cfg.Meteomatics.PlanType,
		"update_interval_minutes", cfg.Meteomatics.UpdateIntervalMinutes,
	)

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}

	client := meteomatics.NewClient(nil, meteomatics.ClientConfig{
		BaseURL: cfg.Meteomatics.BaseURL,
		Model:   cfg.Meteomatics.Model,
		Coordinate: types.Coordinate{
			Latitude:  cfg.Meteomatics.Latitude,
			Longitude: cfg.Meteomatics.Longitude,
		},
		Timeout:   cfg.Meteomatics.RequestTimeout,
		UserAgent: cfg.Service + "/" + cfg.Build.Version,
		Logger:    logger,
	})

	coord := coordinator.New(coordinator.Config{
		Fetcher: client,
		Credentials: types.Credentials{
			Username: cfg.Meteomatics.Username,
			Password: cfg.Meteomatics.Password,
		},
		Plan:               types.PlanTier(cfg.Meteomatics.PlanType),
		OptionalParameters: cfg.Meteomatics.OptionalParameters,
		Location:           loc,
		Logger:             logger,
	})

	// Initial refresh so the API has data before the first scheduled tick.
	// Non-fatal: data stays empty until a cycle succeeds.
	initCtx, cancel := context.WithTimeout(context.Background(), cfg.Meteomatics.RequestTimeout*2)
	if _, err := coord.Refresh(initCtx); err != nil {
		logger.Warn("initial refresh failed; continuing without data",
			"error", err,
		)
	}
	cancel()

	runner := scheduler.NewRunner(scheduler.RunnerConfig{
		Refresher: coord,
		Interval:  cfg.Meteomatics.UpdateInterval(),
		Logger:    logger,
	})
	if err := runner.Start(); err != nil {
		return fmt.Errorf("starting refresh runner: %w", err)
	}
	defer runner.Stop()

	srv, err := api.NewServer(api.ServerConfig{
		Source:         coord,
		Prober:         client,
		Location:       loc,
		Build:          cfg.Build,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer serves the API with graceful shutdown on SIGINT/SIGTERM.
func runHTTPServer(srv *api.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured JSON logger for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
