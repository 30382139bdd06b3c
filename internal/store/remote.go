package store

import (
	"context"
	"fmt"
	"time"
)

// UpsertRemoteScore stores one hole of a remote player's synced snapshot.
// Keyed by (round, pubkey, hole); an existing row is replaced only by a
// snapshot that is at least as fresh, so an out-of-order relay response
// never rolls a remote player's progress backwards. This table is a side
// read-model: it never joins the local player's hole_scores log.
func (s *Store) UpsertRemoteScore(ctx context.Context, roundID int64, pubkey string, holeNumber, strokes int, snapshotCreatedAt, fetchedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO remote_scores
		(round_id, pubkey, hole_number, strokes, snapshot_created_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(round_id, pubkey, hole_number) DO UPDATE SET
			strokes = excluded.strokes,
			snapshot_created_at = excluded.snapshot_created_at,
			fetched_at = excluded.fetched_at
		WHERE excluded.snapshot_created_at >= remote_scores.snapshot_created_at
	`, roundID, pubkey, holeNumber, strokes, snapshotCreatedAt.UnixMilli(), fetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert remote score: %w", err)
	}
	return nil
}

// RemoteScores returns the synced hole scores for one remote player.
func (s *Store) RemoteScores(ctx context.Context, roundID int64, pubkey string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hole_number, strokes
		FROM remote_scores
		WHERE round_id = ? AND pubkey = ?
		ORDER BY hole_number ASC
	`, roundID, pubkey)
	if err != nil {
		return nil, fmt.Errorf("remote scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int]int)
	for rows.Next() {
		var hole, strokes int
		if err := rows.Scan(&hole, &strokes); err != nil {
			return nil, fmt.Errorf("scan remote score: %w", err)
		}
		scores[hole] = strokes
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remote scores: %w", err)
	}
	return scores, nil
}
