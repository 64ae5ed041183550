// Package store provides SQLite-backed storage for reload history.
//
// Every manager reload produces a report; the store appends it to the
// reloads table and its skipped commands to skipped_commands. Store
// implements manager.Recorder.
//
// # Ordering
//
// Records are ordered by seq, assigned on insert, never by timestamp.
// Recording is idempotent per cycle_id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
