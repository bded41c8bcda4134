// Package store provides a SQLite-backed archive of compiled property
// graphs.
//
// The archive holds two tables:
//   - Snapshots: graph documents keyed by their content hash
//   - Compilations: one row per successful compile, pointing at a snapshot
//
// Recompiling an unchanged declaration set records a new compilation but
// reuses the existing snapshot row.
//
// # Ordering
//
// Compilations are ordered by a logical sequence number, never by wall
// time. Listing queries use ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Snapshots are verified on read: the stored document is rebuilt into a
// Graph and its hash must match the row key.
package store
