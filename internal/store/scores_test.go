package store

import (
	"context"
	"testing"
	"time"
)

func createTestRound(t *testing.T, s *Store, pubkeys ...string) int64 {
	t.Helper()
	if len(pubkeys) == 0 {
		pubkeys = []string{"creator-pubkey"}
	}

	// rounds.course_hash has a foreign key into course_snapshots.
	_, err := s.InsertCourseSnapshotIfAbsent(context.Background(), CourseSnapshotRow{
		ContentHash: "hash-abc",
		CourseName:  "Pebble Creek",
		TeeSetName:  "Blue",
		HolesJSON:   `[{"hole":1,"par":4}]`,
		CreatedAt:   time.UnixMilli(500),
	})
	if err != nil {
		t.Fatalf("InsertCourseSnapshotIfAbsent() failed: %v", err)
	}

	roundID, err := s.CreateRound(context.Background(), "hash-abc", "2026-08-25",
		time.UnixMilli(1000), pubkeys)
	if err != nil {
		t.Fatalf("CreateRound() failed: %v", err)
	}
	return roundID
}

func TestAppendHoleScore_AppendOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roundID := createTestRound(t, s)

	// Two writes for the same hole produce two rows, not one.
	if err := s.AppendHoleScore(ctx, roundID, 0, 1, 4, time.UnixMilli(2000)); err != nil {
		t.Fatalf("first AppendHoleScore() failed: %v", err)
	}
	if err := s.AppendHoleScore(ctx, roundID, 0, 1, 5, time.UnixMilli(3000)); err != nil {
		t.Fatalf("second AppendHoleScore() failed: %v", err)
	}

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM hole_scores WHERE round_id = ? AND hole_number = 1",
		roundID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2 (log must be append-only)", count)
	}
}

func TestCurrentScores_LatestTimestampWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roundID := createTestRound(t, s)

	if err := s.AppendHoleScore(ctx, roundID, 0, 1, 4, time.UnixMilli(2000)); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}
	if err := s.AppendHoleScore(ctx, roundID, 0, 1, 6, time.UnixMilli(5000)); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}
	if err := s.AppendHoleScore(ctx, roundID, 0, 2, 3, time.UnixMilli(3000)); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}

	scores, err := s.CurrentScores(ctx, roundID, 0)
	if err != nil {
		t.Fatalf("CurrentScores() failed: %v", err)
	}

	if scores[1] != 6 {
		t.Errorf("hole 1 = %d, want 6 (later recorded_at must win)", scores[1])
	}
	if scores[2] != 3 {
		t.Errorf("hole 2 = %d, want 3", scores[2])
	}
	if len(scores) != 2 {
		t.Errorf("len(scores) = %d, want 2", len(scores))
	}
}

func TestCurrentScores_TieBrokenByInsertOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roundID := createTestRound(t, s)

	// Identical recorded_at: the row inserted second must win.
	at := time.UnixMilli(4000)
	if err := s.AppendHoleScore(ctx, roundID, 0, 7, 4, at); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}
	if err := s.AppendHoleScore(ctx, roundID, 0, 7, 5, at); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}

	scores, err := s.CurrentScores(ctx, roundID, 0)
	if err != nil {
		t.Fatalf("CurrentScores() failed: %v", err)
	}
	if scores[7] != 5 {
		t.Errorf("hole 7 = %d, want 5 (later insert wins timestamp ties)", scores[7])
	}
}

func TestCurrentScores_UnscoredHolesAbsent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roundID := createTestRound(t, s)

	if err := s.AppendHoleScore(ctx, roundID, 0, 3, 4, time.UnixMilli(2000)); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}

	scores, err := s.CurrentScores(ctx, roundID, 0)
	if err != nil {
		t.Fatalf("CurrentScores() failed: %v", err)
	}

	if _, ok := scores[1]; ok {
		t.Error("hole 1 present in scores, want absent (never scored)")
	}
	if _, ok := scores[3]; !ok {
		t.Error("hole 3 absent from scores, want present")
	}
}

func TestCurrentScores_IsolatedPerPlayer(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	roundID := createTestRound(t, s, "creator", "guest")

	if err := s.AppendHoleScore(ctx, roundID, 0, 1, 4, time.UnixMilli(2000)); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}
	if err := s.AppendHoleScore(ctx, roundID, 1, 1, 7, time.UnixMilli(2000)); err != nil {
		t.Fatalf("AppendHoleScore() failed: %v", err)
	}

	creator, err := s.CurrentScores(ctx, roundID, 0)
	if err != nil {
		t.Fatalf("CurrentScores(0) failed: %v", err)
	}
	guest, err := s.CurrentScores(ctx, roundID, 1)
	if err != nil {
		t.Fatalf("CurrentScores(1) failed: %v", err)
	}

	if creator[1] != 4 {
		t.Errorf("creator hole 1 = %d, want 4", creator[1])
	}
	if guest[1] != 7 {
		t.Errorf("guest hole 1 = %d, want 7", guest[1])
	}
}
