package round

import (
	"context"
	"fmt"

	"github.com/fairwaylabs/fairway/internal/course"
)

const (
	minStrokes = 1
	maxStrokes = 20
)

// Scorecard is a headless state machine for scoring one player through a
// round. It holds only navigation state (the current hole); score state
// lives in the durable log, so a process restart resumes with nothing lost.
//
// Commands are explicit and synchronous: ConfirmAtPar writes the current
// hole at par, Adjust corrects it up or down, AdvanceHole moves on. Every
// write goes through the aggregate's append-only log.
type Scorecard struct {
	agg         *Aggregate
	round       Round
	snapshot    course.Snapshot
	playerIndex int
	currentHole int
	finished    bool
}

// State is the derived view of a scorecard, recomputed from the log on each
// call rather than cached.
type State struct {
	CurrentHole   int
	CurrentPar    int
	Scores        map[int]int
	ScoredHoles   int
	TotalHoles    int
	TotalStrokes  int
	RelativeToPar int
	FinishEnabled bool
	Finished      bool
}

// NewScorecard opens a scorecard for one player of a round, positioned at
// hole 1.
func NewScorecard(agg *Aggregate, r Round, snapshot course.Snapshot, playerIndex int) (*Scorecard, error) {
	if playerIndex < 0 || playerIndex >= len(r.Players) {
		return nil, fmt.Errorf("new scorecard: player index %d out of range", playerIndex)
	}
	if snapshot.ContentHash != r.CourseHash {
		return nil, fmt.Errorf("new scorecard: snapshot %s does not match round course %s",
			snapshot.ContentHash, r.CourseHash)
	}
	return &Scorecard{
		agg:         agg,
		round:       r,
		snapshot:    snapshot,
		playerIndex: playerIndex,
		currentHole: 1,
	}, nil
}

// CurrentHole returns the hole the scorecard is positioned on.
func (sc *Scorecard) CurrentHole() int { return sc.currentHole }

// AdvanceHole moves to the next hole, wrapping past the last hole back to
// hole 1. Navigation only; never writes.
func (sc *Scorecard) AdvanceHole() int {
	sc.currentHole++
	if sc.currentHole > sc.snapshot.HoleCount() {
		sc.currentHole = 1
	}
	return sc.currentHole
}

// SeekHole positions the scorecard on a specific hole.
func (sc *Scorecard) SeekHole(hole int) error {
	if hole < 1 || hole > sc.snapshot.HoleCount() {
		return fmt.Errorf("seek hole: %d out of range 1..%d", hole, sc.snapshot.HoleCount())
	}
	sc.currentHole = hole
	return nil
}

// ConfirmAtPar records the current hole at its par. This is the one-tap
// happy path: the first confirm on a hole writes strokes equal to par.
func (sc *Scorecard) ConfirmAtPar(ctx context.Context) error {
	par := sc.snapshot.ParFor(sc.currentHole)
	if par == 0 {
		return fmt.Errorf("confirm at par: hole %d not in tee set", sc.currentHole)
	}
	return sc.agg.RecordScore(ctx, sc.round.ID, sc.playerIndex, sc.currentHole, par)
}

// Adjust corrects the current hole by delta strokes. The base is the hole's
// current value, or par when the hole is unscored. Results clamp to
// [1, 20]; the correction is appended, never edited in place.
func (sc *Scorecard) Adjust(ctx context.Context, delta int) (int, error) {
	scores, err := sc.agg.CurrentScores(ctx, sc.round.ID, sc.playerIndex)
	if err != nil {
		return 0, fmt.Errorf("adjust: %w", err)
	}

	base, ok := scores[sc.currentHole]
	if !ok {
		base = sc.snapshot.ParFor(sc.currentHole)
		if base == 0 {
			return 0, fmt.Errorf("adjust: hole %d not in tee set", sc.currentHole)
		}
	}

	strokes := base + delta
	if strokes < minStrokes {
		strokes = minStrokes
	}
	if strokes > maxStrokes {
		strokes = maxStrokes
	}

	if err := sc.agg.RecordScore(ctx, sc.round.ID, sc.playerIndex, sc.currentHole, strokes); err != nil {
		return 0, err
	}
	return strokes, nil
}

// RequestFinish validates that every hole is scored. On success the
// scorecard is marked finished; publishing the final record is the caller's
// next step. While holes remain unscored it returns FinishNotReadyError
// naming them.
func (sc *Scorecard) RequestFinish(ctx context.Context) error {
	missing, err := sc.agg.MissingHoles(ctx, sc.round.ID, sc.playerIndex, sc.snapshot)
	if err != nil {
		return fmt.Errorf("request finish: %w", err)
	}
	if len(missing) > 0 {
		return &FinishNotReadyError{Missing: missing}
	}
	sc.finished = true
	return nil
}

// SnapshotState derives the full scorecard view from the log.
func (sc *Scorecard) SnapshotState(ctx context.Context) (State, error) {
	scores, err := sc.agg.CurrentScores(ctx, sc.round.ID, sc.playerIndex)
	if err != nil {
		return State{}, fmt.Errorf("snapshot state: %w", err)
	}

	total, relative := 0, 0
	for hole, strokes := range scores {
		total += strokes
		relative += strokes - sc.snapshot.ParFor(hole)
	}

	return State{
		CurrentHole:   sc.currentHole,
		CurrentPar:    sc.snapshot.ParFor(sc.currentHole),
		Scores:        scores,
		ScoredHoles:   len(scores),
		TotalHoles:    sc.snapshot.HoleCount(),
		TotalStrokes:  total,
		RelativeToPar: relative,
		FinishEnabled: len(scores) >= sc.snapshot.HoleCount(),
		Finished:      sc.finished,
	}, nil
}
