package commands

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"gitlab.com/tozd/go/errors"
)

// NewDuplicateCmd creates a new duplicate command
func NewDuplicateCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicate <path>...",
		Short: "Duplicate files or directories next to the originals",
		Long: `Duplicate creates a numbered sibling of each path in its own
directory (document.txt -> document_00001.txt). Each duplicate is its own
undoable operation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "duplicate").Logger().WithContext(ctx)

			paths, err := expandSources(args)
			if err != nil {
				return err
			}

			var firstErr error
			for _, path := range paths {
				abs, err := filepath.Abs(path)
				if err != nil {
					return errors.Errorf("resolving %s: %w", path, err)
				}
				res := opts.Engine.Duplicate(ctx, abs)
				opts.UserLogger.LogResult("duplicate", res)
				if firstErr == nil {
					firstErr = res.Err()
				}
			}
			opts.Persist(ctx)
			return firstErr
		},
	}

	return cmd
}
