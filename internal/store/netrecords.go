package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// NetworkRecordRow links a round to its published initiation event. At most
// one exists per round; absence means "not yet published".
type NetworkRecordRow struct {
	RoundID           int64
	InitiationEventID string
	JoinedVia         string
	PublishedAt       time.Time
}

// WriteNetworkRecord claims the one-shot network record for a round.
// Uses INSERT ... ON CONFLICT DO NOTHING inside a transaction: the first
// writer wins, and a losing writer gets back the already-stored event id.
// Returns the record that is durably in place and whether this call
// inserted it.
//
// This is the only guard against double-publishing a round's initiation
// event, so callers must treat inserted=false as "reuse the existing id",
// never as an error.
func (s *Store) WriteNetworkRecord(ctx context.Context, roundID int64, eventID, joinedVia string, publishedAt time.Time) (NetworkRecordRow, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NetworkRecordRow{}, false, fmt.Errorf("write network record: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO round_network_records
		(round_id, initiation_event_id, joined_via, published_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(round_id) DO NOTHING
	`, roundID, eventID, joinedVia, publishedAt.UnixMilli())
	if err != nil {
		return NetworkRecordRow{}, false, fmt.Errorf("write network record: insert: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return NetworkRecordRow{}, false, fmt.Errorf("write network record: rows affected: %w", err)
	}

	row := NetworkRecordRow{
		RoundID:           roundID,
		InitiationEventID: eventID,
		JoinedVia:         joinedVia,
		PublishedAt:       publishedAt,
	}
	inserted := n > 0

	if !inserted {
		// Conflict - a record already exists, fetch what actually won.
		var publishedAtMillis int64
		err = tx.QueryRowContext(ctx, `
			SELECT round_id, initiation_event_id, joined_via, published_at
			FROM round_network_records
			WHERE round_id = ?
		`, roundID).Scan(&row.RoundID, &row.InitiationEventID, &row.JoinedVia, &publishedAtMillis)
		if err != nil {
			return NetworkRecordRow{}, false, fmt.Errorf("write network record: select existing: %w", err)
		}
		row.PublishedAt = time.UnixMilli(publishedAtMillis)
	}

	if err := tx.Commit(); err != nil {
		return NetworkRecordRow{}, false, fmt.Errorf("write network record: commit: %w", err)
	}

	return row, inserted, nil
}

// GetNetworkRecord retrieves a round's network record.
// Returns (row, false, nil) when the round has not been published.
func (s *Store) GetNetworkRecord(ctx context.Context, roundID int64) (NetworkRecordRow, bool, error) {
	var row NetworkRecordRow
	var publishedAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT round_id, initiation_event_id, joined_via, published_at
		FROM round_network_records
		WHERE round_id = ?
	`, roundID).Scan(&row.RoundID, &row.InitiationEventID, &row.JoinedVia, &publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return NetworkRecordRow{}, false, nil
	}
	if err != nil {
		return NetworkRecordRow{}, false, fmt.Errorf("get network record: %w", err)
	}

	row.PublishedAt = time.UnixMilli(publishedAt)
	return row, true, nil
}
