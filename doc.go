// Package surrealfocus keeps a focus app's per-user study environment
// consistent across every place it is stored.
//
// One setting, the environment a user studies in (office, park, home,
// coffee-shop or library), is mirrored into five stores: two remote tables,
// a local cache, the document's visual marker and the in-memory theme
// context. Saves write them in a fixed order, a background checker heals
// drift from the profile table, and a debug panel can force every store back
// into agreement.
//
// # Features
//
//   - Two Remote Backends: SurrealDB (native SurrealQL) or PostgreSQL (GORM), with an in-memory fallback for demos
//   - Ordered Save Path: remote primary, remote secondary, local cache, contexts, then the visual marker
//   - Last-Writer Ordering: remote rows carry an update timestamp and reject older writes
//   - Silent Self-Heal: a debounced scheduled check repairs the cache and contexts from the profile table
//   - Preview Mode: try an environment on the visual marker without persisting it
//   - Observability: debug panel, websocket event stream and Prometheus metrics
//
// # Architecture Overview
//
//   - Store Abstraction: [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store.RemoteStore] hides the remote backend,
//     and BadgerDB backs the local cache
//   - Reconciler: [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/reconciler.Reconciler] owns the save, preview, check
//     and force-sync operations
//   - Command Pattern: [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/surrealfocus.Command] organizes the run, migrate,
//     status, sync and save operations
//
// # Package Organization
//
// For the sub-packages see [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg].
//
// # Getting Started
//
// For command-line usage and configuration see
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/surrealfocus].
//
// The [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/client] package provides a Go HTTP client for the API.
package surrealfocus
