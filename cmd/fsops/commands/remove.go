package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
)

// NewRemoveCmd creates a new remove command
func NewRemoveCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		permanent bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "remove <path>...",
		Short: "Delete files and directories",
		Long: `Remove parks each path in the trash so the delete can be undone.
With --permanent the paths are destroyed instead; deleting multiple items
or any directory permanently also requires --yes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "remove").Logger().WithContext(ctx)

			paths, err := expandSources(args)
			if err != nil {
				return err
			}

			res := opts.Engine.Delete(ctx, paths, permanent, yes)
			opts.UserLogger.LogResult("remove", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	cmd.Flags().BoolVar(&permanent, "permanent", false, "bypass the trash and destroy the paths")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm a permanent delete of directories or multiple items")

	return cmd
}
