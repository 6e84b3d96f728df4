// Package store provides SQLite-backed snapshot storage for mirror.
//
// The store keeps two tables:
//   - libraries: raw library snapshots keyed by URI, with a content hash so
//     re-ingesting unchanged content is a no-op
//   - invocations: an append-only log of executor calls
//
// The store implements resolve.Source, so a resolver can read declarations
// straight from a snapshot.
//
// # Ordering
//
// Invocation queries order by seq ASC, id ASC COLLATE BINARY. seq comes
// from a logical clock, never from wall time.
//
// # Schema
//
// Open creates the tables of a new snapshot and stamps PRAGMA user_version.
// Snapshots stamped by a newer schema are refused with ErrSchemaTooNew.
// Files are opened in WAL mode with a 5 second busy timeout.
package store
