// Package models defines the domain types shared by every surrealfocus package.
//
// The central type is [Environment], the per-user "study environment" setting.
// One logical value exists per user, but it is mirrored into five stores of
// different durability and visibility:
//
//   - Remote Primary: the profiles table ([ProfileTable])
//   - Remote Secondary: the onboarding preferences table ([OnboardingTable])
//   - Local Cache: a durable key-value store local to one browsing context
//   - Visual Marker: the document-level theme class and data attribute
//   - In-memory context: the theme context of the running session
//
// A [StoreReading] is a snapshot of the setting as seen from one of these
// stores, and a [SyncStatus] aggregates one reading per store and derives
// whether they agree.
//
// # Typed IDs
//
// [UserID] follows the typed ID pattern used across the SurrealDB examples:
// it wraps a UUID, marshals to a SurrealDB RecordID in CBOR, and implements
// driver.Valuer and sql.Scanner so the same value can be stored by the
// PostgreSQL backend.
//
// # Remote records
//
// [EnvironmentRecord] is the row shape written to both remote tables. Its
// UpdatedAt field is the last-writer timestamp used to order concurrent
// writers: a store rejects a write whose timestamp is older than the one it
// already holds.
package models
