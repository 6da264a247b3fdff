package commands

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"gitlab.com/tozd/go/errors"
)

// NewMoveCmd creates a new move command
func NewMoveCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <source>... <target-dir>",
		Short: "Move files and directories into a target directory",
		Long: `Move relocates every source into the target directory, falling back
to copy-and-delete when the target is on another volume. Name collisions
resolve to numbered names. The batch is recorded as one undoable operation.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "move").Logger().WithContext(ctx)

			sources, err := expandSources(args[:len(args)-1])
			if err != nil {
				return err
			}
			target, err := filepath.Abs(args[len(args)-1])
			if err != nil {
				return errors.Errorf("resolving target: %w", err)
			}

			res := opts.Engine.Move(ctx, sources, target)
			opts.UserLogger.LogResult("move", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	return cmd
}
