// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/dwellmap/internal/api"
	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/database"
	"github.com/tomtom215/dwellmap/internal/layout"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/playback"
	"github.com/tomtom215/dwellmap/internal/presence"
	"github.com/tomtom215/dwellmap/internal/session"
	"github.com/tomtom215/dwellmap/internal/supervisor"
	"github.com/tomtom215/dwellmap/internal/supervisor/services"
	ws "github.com/tomtom215/dwellmap/internal/websocket"
)

const layoutGCInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("driver", cfg.Database.Driver).
		Int("interval_minutes", cfg.Timeline.IntervalMinutes).
		Int("max_slots", cfg.Timeline.MaxSlots).
		Msg("Starting Dwellmap with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open presence record source")
	}
	defer func() {
		if err := closeSource(); err != nil {
			logging.Error().Err(err).Msg("Error closing record source")
		}
	}()
	resilient := presence.NewResilient(source, cfg.Breaker, cfg.Cache)

	layouts, err := layout.Open(cfg.Layout)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open layout store")
	}
	defer func() {
		if err := layouts.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing layout store")
		}
	}()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	wsHub := ws.NewHub()
	builder := session.NewBuilder(resilient, cfg.Timeline, cfg.Filter)
	sessions := session.NewManager(builder, layouts, wsHub, session.ManagerConfig{
		Playback:  cfg.Playback,
		Heatmap:   cfg.Heatmap,
		Scheduler: playback.RealScheduler{},
	})
	defer sessions.CloseAll()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(resilient, builder, sessions, layouts, wsHub, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Data layer
	tree.AddDataService(services.NewMaintenanceService("cache-sweeper",
		func(context.Context) (int, error) { return resilient.CleanupExpired(), nil },
		services.MaintenanceConfig{Interval: cfg.Cache.TTL},
		logging.WithComponent("maintenance")))
	if !cfg.Layout.InMemory {
		tree.AddDataService(services.NewMaintenanceService("layout-gc",
			func(context.Context) (int, error) { return 0, layouts.CollectGarbage() },
			services.MaintenanceConfig{Interval: layoutGCInterval},
			logging.WithComponent("maintenance")))
	}

	// Playback layer
	tree.AddPlaybackService(services.NewWebSocketHubService(wsHub))
	tree.AddPlaybackService(services.NewMaintenanceService("session-reaper",
		func(context.Context) (int, error) { return sessions.Reap(time.Now()), nil },
		services.MaintenanceConfig{Interval: cfg.Playback.ReapInterval},
		logging.WithComponent("maintenance")))

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// openSource opens the configured record store and returns it with its
// closer.
func openSource(ctx context.Context, cfg *config.Config) (presence.Source, func() error, error) {
	if cfg.IsPostgres() {
		pg, err := presence.NewPostgres(ctx, cfg.Database.DSN, cfg.Database.ConnectAttempts, cfg.Database.ConnectDelay)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Msg("Connected to PostgreSQL presence views")
		return pg, pg.Close, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	logging.Info().Str("path", cfg.Database.Path).Msg("DuckDB initialized successfully")

	if cfg.Database.SeedSampleData {
		n, err := db.SeedSampleData(ctx)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("seed sample data: %w", err)
		}
		logging.Info().Int("records", n).Msg("Sample presence data seeded")
	}
	return db, db.Close, nil
}
