// Package app is the composition root for ClubDesk.
//
// # Overview
//
// Run wires configuration, logging, the API client, the shared cache and
// one of the two front ends, then blocks until the user exits or the context
// is cancelled.
//
// # Startup
//
//  1. Parse the optional target ("new" or "edit ID")
//  2. Load ~/.config/clubdesk/config.toml and the user's prefs
//  3. Open the slog log file (the terminal belongs to the UI)
//  4. Build api.Client and cache.Store
//  5. Plain mode: run prompt.Run for a single form and exit
//  6. Otherwise: start the poller and run the Bubble Tea UI
//
// # Data Flow
//
//	┌──────────────┐   List    ┌─────────────────┐
//	│    poller    │ ────────> │   api.Client    │
//	└──────┬───────┘           └────────▲────────┘
//	       │ UpdateList                 │ Get/Create/Update
//	┌──────▼───────┐  Invalidate ┌──────┴──────────┐
//	│ cache.Store  │ <────────── │ form.Controller │
//	└──────┬───────┘             └─────────────────┘
//	       │ Snapshot
//	┌──────▼───────┐
//	│   ui.Model   │
//	└──────────────┘
//
// # Polling Behavior
//
// The poller refreshes the list every interval (default 5 seconds). After a
// failure the wait doubles per consecutive failure, capped at 30 seconds.
// Invalidating the list, which a successful form submission does, wakes the
// poller at once.
//
// Edit forms always read their record from the API. Each read refreshes the
// cache.ItemKey entry, which the form screen shows as the last known name
// while the next load is running. A list poll that sees a different version
// of a record marks its entry stale.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Bad command-line target
//   - Invalid config file or API base URL
//   - Log file cannot be opened
//
// Recoverable errors (logged):
//   - Unreadable prefs file (defaults are used)
//   - Poll failures (shown as API status in the header)
package app
