package commands

import (
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"gitlab.com/tozd/go/errors"
)

// NewTrashCmd creates the trash command group
func NewTrashCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and empty the trash",
	}

	cmd.AddCommand(
		newTrashListCmd(opts),
		newTrashEmptyCmd(opts),
	)

	return cmd
}

func newTrashListCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List everything currently in the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.Engine.Trash().Entries()
			if err != nil {
				return errors.Errorf("listing trash: %w", err)
			}
			if len(entries) == 0 {
				pterm.Info.WithPrefix(pterm.Prefix{Text: "🗑️"}).Println("trash is empty")
				return nil
			}
			for _, entry := range entries {
				kind := "file"
				if entry.IsDir {
					kind = "directory"
				}
				pterm.Info.WithPrefix(pterm.Prefix{Text: "🗑️"}).Printf("%s  %s (%s)\n", entry.ID, entry.From, kind)
			}
			return nil
		},
	}
}

func newTrashEmptyCmd(opts *opts.RootOpts) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "empty",
		Short: "Permanently destroy everything in the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "trash empty").Logger().WithContext(ctx)

			if !yes {
				return errors.New("emptying the trash is irreversible, pass --yes to confirm")
			}

			entries, err := opts.Engine.Trash().Entries()
			if err != nil {
				return errors.Errorf("listing trash: %w", err)
			}
			for _, entry := range entries {
				if err := opts.Engine.Trash().Purge(entry); err != nil {
					return errors.Errorf("purging %s: %w", entry.ID, err)
				}
				zerolog.Ctx(ctx).Debug().Str("id", entry.ID).Str("from", entry.From).Msg("purged")
			}
			opts.UserLogger.LogValidation(true, "Trash emptied", nil)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the purge")

	return cmd
}
