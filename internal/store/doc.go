// Package store provides SQLite-backed durable storage for simulated chain
// logs.
//
// The log is append-only:
//   - Sessions: one per simulated chain
//   - Blocks: height, hash and parent hash per session
//   - Transactions: sender, nonce, call target and arguments
//   - Receipts: the result of each transaction and whether it committed
//
// Arguments and results are stored as canonical JSON (see
// clarity.MarshalCanonical) so identical runs produce identical rows.
//
// # Deterministic reads
//
// Every query orders its results explicitly (sessions by seq, blocks by
// height, transactions by idx). Nothing depends on rowid or insertion order.
//
// # Database configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
