// Package round owns round lifecycle and the append-only score log.
//
// A round is immutable once created: its course hash, date, and player set
// never change. Scores are rows in a log, not cells in a grid; a correction
// appends a new row and the current value per hole is the latest row,
// insertion order breaking timestamp ties. "Round complete" is derived from
// the log on demand and never stored, so there is no completion flag to
// drift out of sync.
//
// Scorecard layers a headless state machine on top: confirm-at-par,
// adjust, advance, finish. It keeps only navigation state in memory, so a
// process restart loses nothing but the current hole position.
package round
