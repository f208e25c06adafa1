// Package reconciler keeps the study environment consistent across its five
// stores.
//
// The stores are reached only through the interfaces of
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store], passed in
// [Dependencies]. Nothing here reads globals, which is what lets the tests run
// the full save and self-heal paths against in-memory fakes.
//
// # Consistency model
//
// No transaction spans a remote database and browser-local storage, so the
// reconciler does not try to be atomic. Instead:
//
//   - [Reconciler.SaveEnvironment] writes the stores in a fixed order (Remote
//     Primary, Remote Secondary, Local Cache, theme context, collaborators,
//     Visual Marker, broadcast) and stops at the first failing remote write.
//   - Every remote write carries a last-writer timestamp, so concurrent writers
//     from other tabs or devices resolve to the newest write per table.
//   - [Reconciler.CheckAndFixEnvironment] is the correctness backstop. It
//     reads every store, asks the pure [PlanCheck] what to do, and re-runs the
//     save path with Remote Primary as the source of truth. It is silent: it
//     never notifies the user and never returns an error.
//
// Saving the same value twice leaves the stores exactly as saving it once, and
// a crash between two steps is repaired by the next check.
//
// # Source of truth
//
// Automatic checks trust Remote Primary only. A user-initiated
// [Reconciler.ForceSync] takes the first value found in the order Remote
// Primary, in-memory context, Local Cache, Visual Marker, and falls back to
// the configured default; see [ResolveSourceOfTruth].
//
// # Preview
//
// [Reconciler.PreviewEnvironment] and [Reconciler.ResetPreview] change only
// the Visual Marker. They never write a remote store or the cache.
package reconciler
