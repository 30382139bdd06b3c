package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairwaylabs/fairway/internal/config"
	"github.com/fairwaylabs/fairway/internal/course"
	"github.com/fairwaylabs/fairway/internal/publish"
	"github.com/fairwaylabs/fairway/internal/round"
)

// NewRoundCommand groups the round lifecycle commands.
func NewRoundCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Create, score, and finish rounds",
	}
	cmd.AddCommand(newRoundCreateCommand(opts))
	cmd.AddCommand(newRoundScoreCommand(opts))
	cmd.AddCommand(newRoundStatusCommand(opts))
	cmd.AddCommand(newRoundFinishCommand(opts))
	return cmd
}

func newRoundCreateCommand(opts *RootOptions) *cobra.Command {
	var (
		coursePath string
		teeSet     string
		date       string
		players    []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a round from a course definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Formatter(cmd)
			ctx := cmd.Context()

			app, err := NewApp(ctx, opts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			out.VerboseLog("Loading course definition %s", coursePath)
			def, err := course.LoadDefinition(coursePath)
			if err != nil {
				out.Error(ErrCodeValidation, err.Error(), nil)
				return WrapExitError(ExitCommandError, "course definition", err)
			}
			tee, ok := def.TeeSet(teeSet)
			if !ok {
				err := fmt.Errorf("course %q has no tee set %q", def.Course, teeSet)
				out.Error(ErrCodeValidation, err.Error(), nil)
				return WrapExitError(ExitCommandError, "tee set", err)
			}

			snap, err := app.Courses.GetOrCreate(ctx, def.Course, tee.Name, tee.Holes, time.Now())
			if err != nil {
				out.Error(ErrCodeGeneric, err.Error(), nil)
				return err
			}

			local, err := app.Config.PublicKey()
			if err != nil {
				return WrapExitError(ExitCommandError, "local key", err)
			}
			allPlayers := append([]string{local}, players...)

			r, err := app.Rounds.Create(ctx, snap, allPlayers, date)
			if err != nil {
				if round.IsInvalidPlayerSet(err) {
					out.Error(ErrCodeValidation, err.Error(), nil)
					return WrapExitError(ExitCommandError, "player set", err)
				}
				return err
			}

			// The initiation publish is detached: the command reports
			// success immediately and Close drains the broadcast.
			app.Runner.Go("publish-initiation", func(ctx context.Context) error {
				_, err := app.Pub.PublishInitiation(ctx, r, snap)
				if errors.Is(err, publish.ErrReadOnlyAccount) {
					return nil
				}
				return err
			})

			// Multi-device rounds want the initiation visible right away so
			// invites can reference it. The wait is bounded; a miss is not
			// an error, the final-record path repairs it later.
			if len(allPlayers) > 1 && app.Config.AccountState() == config.AccountActive {
				out.VerboseLog("Confirming initiation on relays")
				if id, err := app.Poller.AwaitInitiationRecord(ctx, r, 10, 500*time.Millisecond); err == nil {
					return out.Successf("round %d created, published as %s: %s (%s), %d holes, %d players",
						r.ID, id, snap.CourseName, snap.TeeSetName, snap.HoleCount(), len(allPlayers))
				}
				out.VerboseLog("Initiation not visible yet, continuing")
			}

			return out.Successf("round %d created: %s (%s), %d holes, %d players",
				r.ID, snap.CourseName, snap.TeeSetName, snap.HoleCount(), len(allPlayers))
		},
	}

	cmd.Flags().StringVar(&coursePath, "course", "", "course definition file (YAML)")
	cmd.Flags().StringVar(&teeSet, "tee", "", "tee set name")
	cmd.Flags().StringVar(&date, "date", "", "round date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&players, "player", nil, "additional player pubkey (repeatable)")
	cmd.MarkFlagRequired("course")
	cmd.MarkFlagRequired("tee")
	cmd.MarkFlagRequired("date")
	return cmd
}

func newRoundScoreCommand(opts *RootOptions) *cobra.Command {
	var (
		roundID int64
		player  int
		hole    int
		strokes int
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Record a score (a correction is just a new score)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Formatter(cmd)
			ctx := cmd.Context()

			app, err := NewApp(ctx, opts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			r, snap, err := app.LoadRound(ctx, roundID)
			if err != nil {
				out.Error(ErrCodeNotFound, err.Error(), nil)
				return err
			}
			if hole < 1 || hole > snap.HoleCount() {
				err := fmt.Errorf("hole %d out of range 1..%d", hole, snap.HoleCount())
				out.Error(ErrCodeValidation, err.Error(), nil)
				return WrapExitError(ExitCommandError, "hole", err)
			}

			if err := app.Rounds.RecordScore(ctx, roundID, player, hole, strokes); err != nil {
				out.Error(ErrCodeGeneric, err.Error(), nil)
				return err
			}

			// Best-effort live snapshot for remote players; never blocks
			// the recorded score.
			app.Runner.Go("publish-snapshot", func(ctx context.Context) error {
				scores, err := app.Rounds.CurrentScores(ctx, roundID, player)
				if err != nil {
					return err
				}
				_, err = app.Pub.PublishScoreSnapshot(ctx, r, player, scores)
				if errors.Is(err, publish.ErrReadOnlyAccount) || errors.Is(err, publish.ErrNoInitiation) {
					return nil
				}
				return err
			})

			return out.Successf("round %d hole %d: %d strokes (par %d)",
				roundID, hole, strokes, snap.ParFor(hole))
		},
	}

	cmd.Flags().Int64Var(&roundID, "round", 0, "round id")
	cmd.Flags().IntVar(&player, "player", 0, "player index (0 = you)")
	cmd.Flags().IntVar(&hole, "hole", 0, "hole number")
	cmd.Flags().IntVar(&strokes, "strokes", 0, "stroke count")
	cmd.MarkFlagRequired("round")
	cmd.MarkFlagRequired("hole")
	cmd.MarkFlagRequired("strokes")
	return cmd
}

func newRoundStatusCommand(opts *RootOptions) *cobra.Command {
	var roundID int64

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the scorecard",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Formatter(cmd)
			ctx := cmd.Context()

			app, err := NewApp(ctx, opts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			r, snap, err := app.LoadRound(ctx, roundID)
			if err != nil {
				out.Error(ErrCodeNotFound, err.Error(), nil)
				return err
			}

			status, err := buildStatus(ctx, app, r, snap)
			if err != nil {
				out.Error(ErrCodeGeneric, err.Error(), nil)
				return err
			}

			if opts.Format == "json" {
				return out.Success(status)
			}
			return out.Success(status.render())
		},
	}

	cmd.Flags().Int64Var(&roundID, "round", 0, "round id")
	cmd.MarkFlagRequired("round")
	return cmd
}

func newRoundFinishCommand(opts *RootOptions) *cobra.Command {
	var (
		roundID int64
		player  int
	)

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Finish a player's round and publish the final record",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Formatter(cmd)
			ctx := cmd.Context()

			app, err := NewApp(ctx, opts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			r, snap, err := app.LoadRound(ctx, roundID)
			if err != nil {
				out.Error(ErrCodeNotFound, err.Error(), nil)
				return err
			}

			missing, err := app.Rounds.MissingHoles(ctx, roundID, player, snap)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				msg := fmt.Sprintf("cannot finish: unscored holes %v", missing)
				out.Error(ErrCodeValidation, msg, missing)
				return WrapExitError(ExitFailure, msg, nil)
			}

			scores, err := app.Rounds.CurrentScores(ctx, roundID, player)
			if err != nil {
				return err
			}

			eventID, err := app.Pub.PublishFinalRecord(ctx, r, snap, player, scores)
			if err != nil {
				if errors.Is(err, publish.ErrReadOnlyAccount) {
					out.Error(ErrCodeReadOnly, err.Error(), nil)
					return WrapExitError(ExitFailure, "read-only account", err)
				}
				out.Error(ErrCodeNetwork, err.Error(), nil)
				return WrapExitError(ExitFailure, "final record publish", err)
			}

			return out.Successf("round %d player %d finished, final record %s", roundID, player, eventID)
		},
	}

	cmd.Flags().Int64Var(&roundID, "round", 0, "round id")
	cmd.Flags().IntVar(&player, "player", 0, "player index (0 = you)")
	cmd.MarkFlagRequired("round")
	return cmd
}

// roundStatus is the status payload, JSON-friendly.
type roundStatus struct {
	RoundID    int64          `json:"round_id"`
	Course     string         `json:"course"`
	TeeSet     string         `json:"tee_set"`
	Date       string         `json:"date"`
	Holes      int            `json:"holes"`
	Players    []playerStatus `json:"players"`
	Published  bool           `json:"published"`
	InitiateID string         `json:"initiation_event_id,omitempty"`
}

type playerStatus struct {
	Index   int         `json:"index"`
	Pubkey  string      `json:"pubkey"`
	Scores  map[int]int `json:"scores"`
	Total   int         `json:"total"`
	ToPar   int         `json:"to_par"`
	Scored  int         `json:"scored_holes"`
	CanEnd  bool        `json:"finish_enabled"`
	Remote  bool        `json:"remote"`
	Display string      `json:"display_name,omitempty"`
}

func buildStatus(ctx context.Context, app *App, r round.Round, snap course.Snapshot) (*roundStatus, error) {
	status := &roundStatus{
		RoundID: r.ID,
		Course:  snap.CourseName,
		TeeSet:  snap.TeeSetName,
		Date:    r.Date,
		Holes:   snap.HoleCount(),
	}

	if rec, found, err := app.DB.GetNetworkRecord(ctx, r.ID); err == nil && found {
		status.Published = true
		status.InitiateID = rec.InitiationEventID
	}

	profiles := app.Identity.ResolveProfiles(ctx, r.Players)

	for i, pk := range r.Players {
		ps := playerStatus{Index: i, Pubkey: pk, Remote: i != 0}
		if p, ok := profiles[pk]; ok {
			ps.Display = p.BestName()
		}

		var scores map[int]int
		var err error
		if i == 0 {
			scores, err = app.Rounds.CurrentScores(ctx, r.ID, i)
		} else {
			scores, err = app.DB.RemoteScores(ctx, r.ID, pk)
		}
		if err != nil {
			return nil, err
		}

		ps.Scores = scores
		ps.Scored = len(scores)
		for hole, strokes := range scores {
			ps.Total += strokes
			ps.ToPar += strokes - snap.ParFor(hole)
		}
		ps.CanEnd = i == 0 && len(scores) >= snap.HoleCount()
		status.Players = append(status.Players, ps)
	}
	return status, nil
}

func (s *roundStatus) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d - %s (%s) on %s\n", s.RoundID, s.Course, s.TeeSet, s.Date)
	if s.Published {
		fmt.Fprintf(&b, "Published as %s\n", s.InitiateID)
	} else {
		b.WriteString("Not yet published\n")
	}

	for _, p := range s.Players {
		name := p.Display
		if name == "" {
			name = p.Pubkey
		}
		fmt.Fprintf(&b, "\n%s (%d/%d holes", name, p.Scored, s.Holes)
		if p.Scored > 0 {
			fmt.Fprintf(&b, ", %d strokes, %+d", p.Total, p.ToPar)
		}
		b.WriteString(")\n")

		holes := make([]int, 0, len(p.Scores))
		for h := range p.Scores {
			holes = append(holes, h)
		}
		sort.Ints(holes)
		for _, h := range holes {
			fmt.Fprintf(&b, "  hole %2d: %d\n", h, p.Scores[h])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
