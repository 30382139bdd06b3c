package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSyncCommand pulls remote players' latest snapshots for a round.
// Sync is an explicit user action, never a background subscription.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	var roundID int64

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch remote players' scores for a round",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Formatter(cmd)
			ctx := cmd.Context()

			app, err := NewApp(ctx, opts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			r, _, err := app.LoadRound(ctx, roundID)
			if err != nil {
				out.Error(ErrCodeNotFound, err.Error(), nil)
				return err
			}

			out.VerboseLog("Querying %d relay(s) for %d player(s)", len(app.Config.Relays), len(r.Players)-1)
			results, err := app.Poller.RefreshRemoteScores(ctx, r)
			if err != nil {
				out.Error(ErrCodeNetwork, err.Error(), nil)
				return WrapExitError(ExitFailure, "sync", err)
			}

			if opts.Format == "json" {
				return out.Success(results)
			}
			if len(results) == 0 {
				return out.Success("no remote scores yet")
			}

			profiles := app.Identity.ResolveProfiles(ctx, r.Players)
			msg := fmt.Sprintf("fetched scores from %d player(s):", len(results))
			for pk, scores := range results {
				name := pk
				if p, ok := profiles[pk]; ok {
					name = p.BestName()
				}
				msg += fmt.Sprintf("\n  %s: %d hole(s)", name, len(scores))
			}
			return out.Success(msg)
		},
	}

	cmd.Flags().Int64Var(&roundID, "round", 0, "round id")
	cmd.MarkFlagRequired("round")
	return cmd
}
