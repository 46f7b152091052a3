// Package store provides a SQLite-backed host.AddressSpace.
//
// Two tables:
//   - accounts: one row per occupied address (lamports + record bytes)
//   - txn_log: append-only log of committed instructions
//
// # Critical Patterns
//
// Atomicity: every instruction runs in one SQL transaction. Account writes
// and the log append commit together or not at all.
//
// Deterministic ordering: reads use ORDER BY address (memcmp) for accounts
// and ORDER BY seq for the log, matching the Badger backend.
//
// Canonical args: instruction arguments are stored as RFC 8785 canonical
// JSON so the log is byte-stable across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
