// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

/*
Package services provides suture.Service wrappers for Dwellmap components.

Each wrapper translates a component's own lifecycle into suture's
context-aware Serve method and names itself via fmt.Stringer for the
supervisor's event log.

# Available Services

HTTPServerService runs the API server. ListenAndServe runs in a goroutine;
cancellation calls Shutdown with a fresh timeout context.

WebSocketHubService runs the hub that fans playback frames out to
subscribed clients.

MaintenanceService runs a MaintenanceTask on a ticker. The server wires three
of them:

	session-reaper  session.Manager.Reap            playback layer
	cache-sweeper   presence.CachedSource.CleanupExpired  data layer
	layout-gc       layout.Store.CollectGarbage     data layer

Task failures are logged and the loop continues.
*/
package services
