package course

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairwaylabs/fairway/internal/store"
)

// Store persists content-addressed course snapshots. Insertion is idempotent
// on the content hash, so repeatedly "creating" the same logical course is
// free and never duplicates rows.
type Store struct {
	db *store.Store
}

// NewStore wraps the durable store with course snapshot operations.
func NewStore(db *store.Store) *Store {
	return &Store{db: db}
}

// GetOrCreate computes the content hash for the definition and stores a
// snapshot row if one does not already exist. Either way it returns the
// snapshot under its canonical hash. This is the only write path for course
// snapshots; rows are immutable once inserted.
func (cs *Store) GetOrCreate(ctx context.Context, name, teeSet string, holes []Hole, now time.Time) (Snapshot, error) {
	if len(holes) == 0 {
		return Snapshot{}, fmt.Errorf("get or create course: tee set %q has no holes", teeSet)
	}

	hash, err := ContentHash(name, teeSet, holes)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get or create course: %w", err)
	}

	holesJSON, err := json.Marshal(holes)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get or create course: marshal holes: %w", err)
	}

	inserted, err := cs.db.InsertCourseSnapshotIfAbsent(ctx, store.CourseSnapshotRow{
		ContentHash: hash,
		CourseName:  name,
		TeeSetName:  teeSet,
		HolesJSON:   string(holesJSON),
		CreatedAt:   now,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("get or create course: %w", err)
	}

	if inserted {
		return Snapshot{
			ContentHash: hash,
			CourseName:  name,
			TeeSetName:  teeSet,
			Holes:       holes,
			CreatedAt:   now,
		}, nil
	}

	// Row already existed; serve the stored snapshot so CreatedAt reflects
	// the first insertion, not this call.
	return cs.Get(ctx, hash)
}

// Get retrieves a snapshot by content hash. The stored hash is trusted as-is:
// local rows were hashed on insert, and re-verification belongs to the
// network receive path, not local reads.
func (cs *Store) Get(ctx context.Context, contentHash string) (Snapshot, error) {
	row, found, err := cs.db.GetCourseSnapshot(ctx, contentHash)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get course: %w", err)
	}
	if !found {
		return Snapshot{}, fmt.Errorf("get course %s: %w", contentHash, ErrNotFound)
	}

	var holes []Hole
	if err := json.Unmarshal([]byte(row.HolesJSON), &holes); err != nil {
		return Snapshot{}, fmt.Errorf("get course %s: corrupt holes: %w", contentHash, err)
	}

	return Snapshot{
		ContentHash: row.ContentHash,
		CourseName:  row.CourseName,
		TeeSetName:  row.TeeSetName,
		Holes:       holes,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// ImportVerified stores a snapshot that arrived over the network and already
// passed VerifyContent. Idempotent like GetOrCreate.
func (cs *Store) ImportVerified(ctx context.Context, snap Snapshot, now time.Time) (Snapshot, error) {
	return cs.GetOrCreate(ctx, snap.CourseName, snap.TeeSetName, snap.Holes, now)
}
