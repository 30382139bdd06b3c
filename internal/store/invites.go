package store

import (
	"context"
	"fmt"
	"time"
)

// RecordInviteDelivery logs one outgoing invite wrap. Best-effort audit
// only: inviter failures are independent per recipient, and this log is how
// a later session can tell who was actually reached.
func (s *Store) RecordInviteDelivery(ctx context.Context, id string, roundID int64, recipient, relayURL string, sentAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invite_deliveries (id, round_id, recipient, relay_url, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, roundID, recipient, relayURL, sentAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record invite delivery: %w", err)
	}
	return nil
}

// CountInviteDeliveries returns the number of logged deliveries for a round.
func (s *Store) CountInviteDeliveries(ctx context.Context, roundID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invite_deliveries WHERE round_id = ?
	`, roundID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invite deliveries: %w", err)
	}
	return count, nil
}
