package commands

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"gitlab.com/tozd/go/errors"
)

// NewCopyCmd creates a new copy command
func NewCopyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy <source>... <target-dir>",
		Short: "Copy files and directories into a target directory",
		Long: `Copy places a copy of every source inside the target directory.
Name collisions resolve to numbered names (note.txt -> note_00001.txt).
The whole batch is recorded as one undoable operation.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "copy").Logger().WithContext(ctx)

			sources, err := expandSources(args[:len(args)-1])
			if err != nil {
				return err
			}
			target, err := filepath.Abs(args[len(args)-1])
			if err != nil {
				return errors.Errorf("resolving target: %w", err)
			}

			res := opts.Engine.Copy(ctx, sources, target)
			opts.UserLogger.LogResult("copy", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	return cmd
}
