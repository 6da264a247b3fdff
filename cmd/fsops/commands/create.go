package commands

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"gitlab.com/tozd/go/errors"
)

// NewTouchCmd creates a new touch command
func NewTouchCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "touch <path>",
		Short: "Create an empty file",
		Long: `Touch creates a new empty file. It fails if the name is already
taken. The creation is undoable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "touch").Logger().WithContext(ctx)

			parent, name, err := splitTarget(args[0])
			if err != nil {
				return err
			}

			res := opts.Engine.CreateFile(ctx, parent, name)
			opts.UserLogger.LogResult("create file", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	return cmd
}

// NewMkdirCmd creates a new mkdir command
func NewMkdirCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory",
		Long: `Mkdir creates a new directory. It fails if the name is already
taken. The creation is undoable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "mkdir").Logger().WithContext(ctx)

			parent, name, err := splitTarget(args[0])
			if err != nil {
				return err
			}

			res := opts.Engine.CreateDir(ctx, parent, name)
			opts.UserLogger.LogResult("create directory", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	return cmd
}

func splitTarget(arg string) (parent, name string, err error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", "", errors.Errorf("resolving %s: %w", arg, err)
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}
