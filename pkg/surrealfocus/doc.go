// Package surrealfocus is the application layer of a focus app backend that
// keeps each user's study environment consistent across five stores: the
// profile and onboarding tables in a remote database, a local cache, the
// document's visual marker and the in-memory theme context.
//
// Note: there is no user interface. An [App] models one browsing context and
// exposes it over an HTTP API; the visual marker is a document model the API
// reads and writes.
//
// # Getting Started
//
// For command line usage see [Main]. For the HTTP API see [App.Router].
//
//	# Start SurrealDB
//	surreal start --user root --pass root
//
//	# Prepare the tables and serve
//	surrealfocus migrate
//	surrealfocus run
//
//	# Or without any database
//	surrealfocus -remote memory run
//
// # Basic Usage
//
//	curl -X POST localhost:8080/api/session -d '{"user_id":"6f1c2a4e-8d1b-4b4e-9d7e-3c1f0a2b5e77"}'
//	curl -X PUT  localhost:8080/api/route -d '{"path":"/dashboard"}'
//	curl -X PUT  localhost:8080/api/environment -d '{"environment":"library"}'
//	curl localhost:8080/debug/environment
package surrealfocus
