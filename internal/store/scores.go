package store

import (
	"context"
	"fmt"
	"time"
)

// AppendHoleScore appends one row to the score log. The log is append-only:
// rows are never updated or deleted, and a correction is a new row with a
// later timestamp. A failure here is a data-durability failure and must
// propagate to the caller.
func (s *Store) AppendHoleScore(ctx context.Context, roundID int64, playerIndex, holeNumber, strokes int, recordedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hole_scores
		(round_id, player_index, hole_number, strokes, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, roundID, playerIndex, holeNumber, strokes, recordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("append hole score: %w", err)
	}
	return nil
}

// CurrentScores resolves the current value per hole: the row with the
// maximum recorded_at, breaking ties by the later insert (higher id). Holes
// with no rows are absent from the map - "unscored" is distinct from
// "scored at par".
func (s *Store) CurrentScores(ctx context.Context, roundID int64, playerIndex int) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hole_number, strokes
		FROM hole_scores h1
		WHERE round_id = ? AND player_index = ?
		AND id = (
			SELECT id FROM hole_scores h2
			WHERE h2.round_id = h1.round_id
			AND h2.player_index = h1.player_index
			AND h2.hole_number = h1.hole_number
			ORDER BY h2.recorded_at DESC, h2.id DESC
			LIMIT 1
		)
	`, roundID, playerIndex)
	if err != nil {
		return nil, fmt.Errorf("current scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int]int)
	for rows.Next() {
		var hole, strokes int
		if err := rows.Scan(&hole, &strokes); err != nil {
			return nil, fmt.Errorf("scan current score: %w", err)
		}
		scores[hole] = strokes
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate current scores: %w", err)
	}
	return scores, nil
}
