package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
)

// NewUndoCmd creates a new undo command
func NewUndoCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "undo").Logger().WithContext(ctx)

			res := opts.Engine.Undo(ctx)
			opts.UserLogger.LogResult("undo", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	return cmd
}

// NewRedoCmd creates a new redo command
func NewRedoCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Redo the most recently undone operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "redo").Logger().WithContext(ctx)

			res := opts.Engine.Redo(ctx)
			opts.UserLogger.LogResult("redo", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	return cmd
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(opts *opts.RootOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent undoable operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.UserLogger.LogHistory(opts.Engine.History().Recent(limit))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "how many entries to show")

	return cmd
}
