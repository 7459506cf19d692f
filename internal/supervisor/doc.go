// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package supervisor provides process supervision for Dwellmap using suture v4.

Long-running services are grouped into three layers so that a failure in one
restarts only its own subtree:

	RootSupervisor ("dwellmap")
	├── DataSupervisor ("data-layer")
	│   ├── cache-sweeper     (services.MaintenanceService)
	│   └── layout-gc         (services.MaintenanceService)
	├── PlaybackSupervisor ("playback-layer")
	│   ├── websocket-hub     (services.WebSocketHubService)
	│   └── session-reaper    (services.MaintenanceService)
	└── APISupervisor ("api-layer")
	    └── http-server       (services.HTTPServerService)

Supervisor events (service start, failure, backoff) are logged through
sutureslog, which is fed the zerolog-backed slog handler from the logging
package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPlaybackService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Restart Policy

Failures decay at FailureDecay per second. Once FailureThreshold is exceeded
the supervisor waits FailureBackoff before restarting the service again.
Services that do not return within ShutdownTimeout of cancellation are
reported by UnstoppedServiceReport.
*/
package supervisor
