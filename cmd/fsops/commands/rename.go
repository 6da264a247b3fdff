package commands

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"gitlab.com/tozd/go/errors"
)

// NewRenameCmd creates a new rename command
func NewRenameCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a file or directory in place",
		Long: `Rename gives a single file or directory a new name inside its
current parent. It fails if the name is already taken; nothing is
overwritten.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "rename").Logger().WithContext(ctx)

			path, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Errorf("resolving %s: %w", args[0], err)
			}

			res := opts.Engine.Rename(ctx, path, args[1])
			opts.UserLogger.LogResult("rename", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	return cmd
}
