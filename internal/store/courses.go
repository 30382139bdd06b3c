package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CourseSnapshotRow is the stored form of a content-addressed course+tee
// definition. The stored hash is authoritative: reads never recompute it.
type CourseSnapshotRow struct {
	ContentHash string
	CourseName  string
	TeeSetName  string
	HolesJSON   string
	CreatedAt   time.Time
}

// InsertCourseSnapshotIfAbsent inserts a snapshot keyed by its content hash.
// Uses ON CONFLICT(content_hash) DO NOTHING: calling twice with the same
// logical course never creates a duplicate row. Returns true if a new row
// was inserted.
func (s *Store) InsertCourseSnapshotIfAbsent(ctx context.Context, row CourseSnapshotRow) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO course_snapshots
		(content_hash, course_name, tee_set_name, holes_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO NOTHING
	`,
		row.ContentHash,
		row.CourseName,
		row.TeeSetName,
		row.HolesJSON,
		row.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("insert course snapshot: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert course snapshot: rows affected: %w", err)
	}
	return n > 0, nil
}

// GetCourseSnapshot retrieves a snapshot by content hash.
// Returns (row, false, nil) when absent.
func (s *Store) GetCourseSnapshot(ctx context.Context, contentHash string) (CourseSnapshotRow, bool, error) {
	var row CourseSnapshotRow
	var createdAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash, course_name, tee_set_name, holes_json, created_at
		FROM course_snapshots
		WHERE content_hash = ?
	`, contentHash).Scan(
		&row.ContentHash, &row.CourseName, &row.TeeSetName, &row.HolesJSON, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return CourseSnapshotRow{}, false, nil
	}
	if err != nil {
		return CourseSnapshotRow{}, false, fmt.Errorf("get course snapshot: %w", err)
	}

	row.CreatedAt = time.UnixMilli(createdAt)
	return row, true, nil
}

// CountCourseSnapshots returns the number of stored snapshots.
func (s *Store) CountCourseSnapshots(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM course_snapshots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count course snapshots: %w", err)
	}
	return count, nil
}
