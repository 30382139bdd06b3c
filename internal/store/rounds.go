package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RoundRow is the immutable core of a round. Completion status is derived
// from the score log, never stored here.
type RoundRow struct {
	RoundID    int64
	CourseHash string
	RoundDate  string
	CreatedAt  time.Time
}

// PlayerRow is one participant of a round. Index 0 is always the creator /
// local device owner.
type PlayerRow struct {
	RoundID     int64
	PlayerIndex int
	Pubkey      string
}

// CreateRound atomically inserts the round and its players in one
// transaction: a crash can never leave a round without its player set.
// Player indices follow slice order, creator first.
func (s *Store) CreateRound(ctx context.Context, courseHash, roundDate string, createdAt time.Time, playerPubkeys []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create round: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO rounds (course_hash, round_date, created_at)
		VALUES (?, ?, ?)
	`, courseHash, roundDate, createdAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("create round: insert round: %w", err)
	}

	roundID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create round: last insert id: %w", err)
	}

	for i, pubkey := range playerPubkeys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO round_players (round_id, player_index, pubkey)
			VALUES (?, ?, ?)
		`, roundID, i, pubkey); err != nil {
			return 0, fmt.Errorf("create round: insert player %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("create round: commit: %w", err)
	}

	return roundID, nil
}

// GetRound retrieves a round row. Returns (row, false, nil) when absent.
func (s *Store) GetRound(ctx context.Context, roundID int64) (RoundRow, bool, error) {
	var row RoundRow
	var createdAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT round_id, course_hash, round_date, created_at
		FROM rounds
		WHERE round_id = ?
	`, roundID).Scan(&row.RoundID, &row.CourseHash, &row.RoundDate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return RoundRow{}, false, nil
	}
	if err != nil {
		return RoundRow{}, false, fmt.Errorf("get round: %w", err)
	}

	row.CreatedAt = time.UnixMilli(createdAt)
	return row, true, nil
}

// GetRoundPlayers returns the players of a round ordered by player index.
// Returns an empty slice (not nil) when the round has no players.
func (s *Store) GetRoundPlayers(ctx context.Context, roundID int64) ([]PlayerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round_id, player_index, pubkey
		FROM round_players
		WHERE round_id = ?
		ORDER BY player_index ASC
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("get round players: %w", err)
	}
	defer rows.Close()

	var players []PlayerRow
	for rows.Next() {
		var p PlayerRow
		if err := rows.Scan(&p.RoundID, &p.PlayerIndex, &p.Pubkey); err != nil {
			return nil, fmt.Errorf("scan round player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate round players: %w", err)
	}

	if players == nil {
		players = []PlayerRow{}
	}
	return players, nil
}
