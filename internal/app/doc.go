// Package app provides the orchestration layer for the product list.
//
// # Overview
//
// This package wires together configuration, storage, the native bridge, the
// navigation bridge, connectivity, the offline drainer and the UI. It is the
// composition root where collaborators are built and connected, and it owns the
// Controller that drives the view state.
//
// # Components
//
//   - controller.go: Controller, the view-state and offline-sync lifecycle
//   - actions.go: camera and location handlers gated on native permissions
//   - runtime.go: builds every collaborator from config (shared with the CLI)
//   - poller.go: background refresh of the offline queue depth
//   - app.go: Run, which boots the TUI
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> LoadConfig()          TOML, .env, PRODUCTLIST_* overrides
//	       ├─────> logging.OpenFile()    JSON log under data_dir
//	       ├─────> Open()                storage, bridge, nav, network, drainer
//	       ├─────> StartServices()       prober, sync schedule, poller, /metrics
//	       ├─────> Controller.Start()    permissions, load, subscribe
//	       └─────> ui.Run()              TUI (blocks)
//
// # Loading
//
// LoadProducts is cache first. A non-empty cache is adopted as is. An empty cache
// adopts the built-in dataset and writes each item back one at a time; a failed
// write is logged and counted but does not stop the rest. The last sync time is
// recorded after either path. Any other failure still leaves the view with the
// built-in dataset and reports state.Recovered. Loading is false when it returns.
//
// # Connectivity
//
// Start subscribes to the network source. Every transition to connected starts a
// drain of the offline queue in the background; overlapping drains coalesce inside
// the drainer. Close releases the subscription and waits for in-flight drains.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration or log level
//   - A storage backend that cannot be opened
//   - An invalid sync schedule or container URL
//
// Recoverable errors (logged, the view keeps working):
//   - Cache read and write failures during load
//   - Replay failures, which stay queued for the next drain
//   - Native action failures, surfaced as a state.Notice
package app
