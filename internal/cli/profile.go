package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewProfileCommand shows cached/fetched profiles.
func NewProfileCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect player profiles",
	}
	cmd.AddCommand(newProfileShowCommand(opts))
	return cmd
}

func newProfileShowCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <pubkey> [pubkey...]",
		Short: "Resolve and show profiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.Formatter(cmd)
			ctx := cmd.Context()

			app, err := NewApp(ctx, opts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			profiles := app.Identity.ResolveProfiles(ctx, args)

			if opts.Format == "json" {
				return out.Success(profiles)
			}

			var b strings.Builder
			for i, pk := range args {
				if i > 0 {
					b.WriteString("\n")
				}
				p := profiles[pk]
				fmt.Fprintf(&b, "%s\n  name: %s", pk, p.BestName())
				if p.About != "" {
					fmt.Fprintf(&b, "\n  about: %s", p.About)
				}
				if p.Picture != "" {
					fmt.Fprintf(&b, "\n  picture: %s", p.Picture)
				}
			}
			return out.Success(b.String())
		},
	}
	return cmd
}
