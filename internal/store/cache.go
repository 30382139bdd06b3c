package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ProfileRow is the durable mirror of a remote profile. Empty strings mean
// "never seen", which is why merge logic upstream only writes non-empty
// incoming fields over them.
type ProfileRow struct {
	Pubkey      string
	Name        string
	DisplayName string
	About       string
	Picture     string
	Banner      string
	UpdatedAt   time.Time
}

// ListKind selects one of the cached key-list tables. The values are fixed
// table names, never caller input.
type ListKind string

const (
	ListFollows   ListKind = "cached_follow_lists"
	ListRelays    ListKind = "cached_relay_lists"
	ListFavorites ListKind = "cached_favorites"
)

// GetCachedProfile retrieves a cached profile.
// Returns (row, false, nil) when absent.
func (s *Store) GetCachedProfile(ctx context.Context, pubkey string) (ProfileRow, bool, error) {
	var row ProfileRow
	var updatedAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT pubkey, name, display_name, about, picture, banner, updated_at
		FROM cached_profiles
		WHERE pubkey = ?
	`, pubkey).Scan(
		&row.Pubkey, &row.Name, &row.DisplayName, &row.About,
		&row.Picture, &row.Banner, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ProfileRow{}, false, nil
	}
	if err != nil {
		return ProfileRow{}, false, fmt.Errorf("get cached profile: %w", err)
	}

	row.UpdatedAt = time.UnixMilli(updatedAt)
	return row, true, nil
}

// PutCachedProfile stores a profile row, replacing any previous row for the
// pubkey. Field-level merge decisions happen in the identity cache before
// this call; the store persists what it is given.
func (s *Store) PutCachedProfile(ctx context.Context, row ProfileRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cached_profiles
		(pubkey, name, display_name, about, picture, banner, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pubkey) DO UPDATE SET
			name = excluded.name,
			display_name = excluded.display_name,
			about = excluded.about,
			picture = excluded.picture,
			banner = excluded.banner,
			updated_at = excluded.updated_at
	`,
		row.Pubkey, row.Name, row.DisplayName, row.About,
		row.Picture, row.Banner, row.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put cached profile: %w", err)
	}
	return nil
}

// GetCachedList retrieves a cached key list (follows, relays, or favorites)
// as its stored JSON. Returns ("", false, nil) when absent.
func (s *Store) GetCachedList(ctx context.Context, kind ListKind, pubkey string) (string, bool, error) {
	var keysJSON string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT keys_json FROM %s WHERE pubkey = ?`, kind),
		pubkey,
	).Scan(&keysJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cached list %s: %w", kind, err)
	}
	return keysJSON, true, nil
}

// PutCachedList stores a key list, replacing any previous row. The
// never-overwrite-with-empty invariant is enforced by the identity cache
// before this is called.
func (s *Store) PutCachedList(ctx context.Context, kind ListKind, pubkey, keysJSON string, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`
			INSERT INTO %s (pubkey, keys_json, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(pubkey) DO UPDATE SET
				keys_json = excluded.keys_json,
				updated_at = excluded.updated_at
		`, kind),
		pubkey, keysJSON, updatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put cached list %s: %w", kind, err)
	}
	return nil
}
