package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairwaylabs/fairway/internal/invite"
	"github.com/fairwaylabs/fairway/internal/publish"
)

// NewInviteCommand groups invite operations.
func NewInviteCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Share rounds with other players",
	}
	cmd.AddCommand(newInviteSendCommand(opts))
	cmd.AddCommand(newInviteDecodeCommand(opts))
	return cmd
}

func newInviteSendCommand(opts *RootOptions) *cobra.Command {
	var (
		roundID    int64
		recipients []string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send gift-wrapped invites for a round",
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

			sent, err := app.Inviter.SendInvites(ctx, r, recipients)
			if err != nil {
				switch {
				case errors.Is(err, publish.ErrReadOnlyAccount):
					out.Error(ErrCodeReadOnly, err.Error(), nil)
					return WrapExitError(ExitFailure, "read-only account", err)
				case errors.Is(err, publish.ErrNoInitiation):
					out.Error(ErrCodeValidation, "round is not published yet", nil)
					return WrapExitError(ExitFailure, "round not published", err)
				default:
					out.Error(ErrCodeNetwork, err.Error(), nil)
					return WrapExitError(ExitFailure, "invite send", err)
				}
			}

			return out.Successf("sent %d of %d invite(s)", sent, len(recipients))
		},
	}

	cmd.Flags().Int64Var(&roundID, "round", 0, "round id")
	cmd.Flags().StringArrayVar(&recipients, "to", nil, "recipient pubkey (repeatable)")
	cmd.MarkFlagRequired("round")
	cmd.MarkFlagRequired("to")
	return cmd
}

func newInviteDecodeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Decode an invite token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Formatter(cmd)

			ref, err := invite.Decode(args[0])
			if err != nil {
				out.Error(ErrCodeValidation, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invite token", err)
			}

			if opts.Format == "json" {
				return out.Success(map[string]interface{}{
					"event_id":    ref.EventID,
					"author":      ref.Author,
					"relay_hints": ref.RelayHints,
				})
			}

			msg := fmt.Sprintf("initiation event: %s", ref.EventID)
			if ref.Author != "" {
				msg += fmt.Sprintf("\nhost: %s", ref.Author)
			}
			for _, hint := range ref.RelayHints {
				msg += fmt.Sprintf("\nrelay hint: %s", hint)
			}
			return out.Success(msg)
		},
	}
	return cmd
}
