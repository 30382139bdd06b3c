package round

import (
	"context"
	"fmt"
	"time"

	"github.com/fairwaylabs/fairway/internal/course"
	"github.com/fairwaylabs/fairway/internal/store"
)

// Round is the immutable core of a round plus its player set. Completion is
// never stored; it is derived from the score log on demand.
type Round struct {
	ID         int64
	CourseHash string
	Date       string
	Players    []string
	CreatedAt  time.Time
}

// Aggregate owns round lifecycle and the append-only score log. All writes
// go through the single-connection store, which is what serializes
// concurrent appends.
type Aggregate struct {
	db    *store.Store
	clock Clock
}

// NewAggregate builds a round aggregate over the durable store.
func NewAggregate(db *store.Store, clock Clock) *Aggregate {
	return &Aggregate{db: db, clock: clock}
}

// Create inserts a round against an already-stored course snapshot. The
// round and its players commit in one transaction. Player index 0 is the
// creator; indices follow slice order.
func (a *Aggregate) Create(ctx context.Context, snapshot course.Snapshot, players []string, date string) (Round, error) {
	if err := validatePlayers(players); err != nil {
		return Round{}, err
	}

	now := a.clock.Now()
	roundID, err := a.db.CreateRound(ctx, snapshot.ContentHash, date, now, players)
	if err != nil {
		return Round{}, fmt.Errorf("create round: %w", err)
	}

	return Round{
		ID:         roundID,
		CourseHash: snapshot.ContentHash,
		Date:       date,
		Players:    players,
		CreatedAt:  now,
	}, nil
}

// Get retrieves a round and its players.
func (a *Aggregate) Get(ctx context.Context, roundID int64) (Round, error) {
	row, found, err := a.db.GetRound(ctx, roundID)
	if err != nil {
		return Round{}, fmt.Errorf("get round: %w", err)
	}
	if !found {
		return Round{}, fmt.Errorf("get round %d: %w", roundID, ErrNotFound)
	}

	playerRows, err := a.db.GetRoundPlayers(ctx, roundID)
	if err != nil {
		return Round{}, fmt.Errorf("get round: %w", err)
	}

	players := make([]string, len(playerRows))
	for i, p := range playerRows {
		players[i] = p.Pubkey
	}

	return Round{
		ID:         row.RoundID,
		CourseHash: row.CourseHash,
		Date:       row.RoundDate,
		Players:    players,
		CreatedAt:  row.CreatedAt,
	}, nil
}

// RecordScore appends one score row. Corrections are new rows, never
// updates; the log keeps every value ever entered. A storage failure here
// means entered data could not be made durable, so it always propagates.
func (a *Aggregate) RecordScore(ctx context.Context, roundID int64, playerIndex, hole, strokes int) error {
	if hole < 1 {
		return fmt.Errorf("record score: hole %d out of range", hole)
	}
	if strokes < 1 {
		return fmt.Errorf("record score: strokes %d out of range", strokes)
	}
	if err := a.db.AppendHoleScore(ctx, roundID, playerIndex, hole, strokes, a.clock.Now()); err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	return nil
}

// CurrentScores resolves the current value per hole for one player: latest
// recorded_at wins, ties broken by insertion order. Unscored holes are
// absent from the map.
func (a *Aggregate) CurrentScores(ctx context.Context, roundID int64, playerIndex int) (map[int]int, error) {
	return a.db.CurrentScores(ctx, roundID, playerIndex)
}

// IsFinishEnabled reports whether every hole of the snapshot has at least
// one score row for the player. Only holes that exist in the snapshot
// count: a stray row for a hole outside the tee set never stands in for
// an unscored one. Evaluated against the local log only: remote players'
// progress never gates the local finish.
func (a *Aggregate) IsFinishEnabled(ctx context.Context, roundID int64, playerIndex int, snapshot course.Snapshot) (bool, error) {
	missing, err := a.MissingHoles(ctx, roundID, playerIndex, snapshot)
	if err != nil {
		return false, fmt.Errorf("is finish enabled: %w", err)
	}
	return len(missing) == 0, nil
}

// MissingHoles returns the hole numbers with no score rows for the player,
// in play order.
func (a *Aggregate) MissingHoles(ctx context.Context, roundID int64, playerIndex int, snapshot course.Snapshot) ([]int, error) {
	scores, err := a.db.CurrentScores(ctx, roundID, playerIndex)
	if err != nil {
		return nil, fmt.Errorf("missing holes: %w", err)
	}

	var missing []int
	for _, h := range snapshot.Holes {
		if _, ok := scores[h.Number]; !ok {
			missing = append(missing, h.Number)
		}
	}
	return missing, nil
}

func validatePlayers(players []string) error {
	if len(players) == 0 {
		return &InvalidPlayerSetError{Reason: "no players"}
	}

	seen := make(map[string]bool, len(players))
	for i, pk := range players {
		if !isHexKey(pk) {
			return &InvalidPlayerSetError{Reason: fmt.Sprintf("player %d: key %q is not 64-char lowercase hex", i, pk)}
		}
		if seen[pk] {
			return &InvalidPlayerSetError{Reason: fmt.Sprintf("duplicate player key %s", pk)}
		}
		seen[pk] = true
	}
	return nil
}

func isHexKey(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
