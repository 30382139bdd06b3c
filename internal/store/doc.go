// Package store provides SQLite-backed durable storage for rounds, scores,
// and the local mirror of network state.
//
// The score log is append-only:
//   - hole_scores rows are never updated or deleted
//   - a correction is a new row; the current value per hole is the row with
//     the maximum recorded_at, ties broken by the later insert
//
// # Critical Patterns
//
// One-shot network records
//   - round_network_records has round_id as its primary key
//   - WriteNetworkRecord uses INSERT ... ON CONFLICT DO NOTHING in a
//     transaction; a losing writer reads back the winning event id
//   - this is the only guard against double-publishing a round
//
// Freshness-guarded remote scores
//   - remote_scores is keyed by (round_id, pubkey, hole_number)
//   - an upsert only wins when its snapshot_created_at is at least as new,
//     so out-of-order relay responses never roll progress backwards
//
// Cache tables never self-blank
//   - cached_profiles and the key-list tables store whatever the identity
//     layer hands them; the never-overwrite-with-empty rule lives upstream
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - single connection (SetMaxOpenConns(1)): one writer at a time
package store
