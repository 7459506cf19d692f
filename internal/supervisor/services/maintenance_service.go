// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaintenanceTask performs one round of housekeeping and reports how many
// items it affected (sessions reaped, cache entries evicted, and so on).
type MaintenanceTask func(ctx context.Context) (int, error)

// MaintenanceConfig holds the schedule for a MaintenanceService.
type MaintenanceConfig struct {
	// Interval between runs. Default: 1m
	Interval time.Duration

	// RunOnStart runs the task once before the first tick.
	RunOnStart bool

	// Timeout bounds a single run. Zero means Interval.
	Timeout time.Duration
}

// MaintenanceService runs a housekeeping task on a ticker. Task errors are
// logged and the loop continues; only cancellation ends Serve.
type MaintenanceService struct {
	task   MaintenanceTask
	config MaintenanceConfig
	logger zerolog.Logger
	name   string
}

// NewMaintenanceService creates a named periodic task.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(name string, task MaintenanceTask, cfg MaintenanceConfig, logger zerolog.Logger) *MaintenanceService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &MaintenanceService{
		task:   task,
		config: cfg,
		logger: logger.With().Str("service", name).Logger(),
		name:   name,
	}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Debug().Dur("interval", s.config.Interval).Msg("maintenance service starting")

	if s.config.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *MaintenanceService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	n, err := s.task(runCtx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("maintenance run failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int("affected", n).Dur("duration", time.Since(start)).Msg("maintenance run complete")
	}
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.name
}
