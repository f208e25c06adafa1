// Package pkg contains all the sub-packages for the surrealfocus application.
//
// # Application Layer
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/surrealfocus] - Commands, configuration, HTTP handlers and the event stream.
// An App models one browsing context with at most one signed-in user.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/reconciler] - The save, preview, automatic check and force-sync operations
// that keep the five stores consistent.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/scheduler] - The per-session background checker.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/observer] - The debug panel: status, force sync and text rendering.
//
// # Domain Layer
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models] - Environments, typed user IDs, store readings and sync status.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/session] - Theme, onboarding and user contexts.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events] - Same-document broadcast of storage and environment events.
//
// # Infrastructure Layer
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store] - Store interfaces, errors and the read-only wrapper.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/surrealdb] - SurrealDB remote tables using native SurrealQL.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/postgres] - PostgreSQL remote tables using GORM.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/memory] - In-process remote tables with failure injection.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache] - BadgerDB local cache scoped to an origin.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/marker] - Document model and themed-route predicate.
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/logger] - zerolog construction and component loggers.
//
// # Integration Layer
//
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/client] - HTTP client for the surrealfocus API.
//
// # Package Dependencies
//
//	surrealfocus → reconciler, scheduler, observer, session, marker, localcache, store, events, logger, models
//	reconciler → store, localcache, events, models
//	scheduler → reconciler, models
//	observer → events, store, models
//	session → localcache, store, models
//	marker → store, models
//	store/* → store, models
//	localcache → store, models
//	client → models
package pkg
