package commands

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"github.com/walteh/fsops/pkg/drop"
	"gitlab.com/tozd/go/errors"
)

// NewDropCmd creates a new drop command
func NewDropCmd(opts *opts.RootOpts) *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "drop <source>... <target-dir>",
		Short: "Resolve a drag-and-drop gesture and run it",
		Long: `Drop decides what dragging the sources onto the target directory
should do and runs it. Without --action, sources on the same volume as the
target are moved and cross-volume sources are copied. Dropping something
onto itself or into its own subtree is refused as a no-op.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "drop").Logger().WithContext(ctx)

			requested, err := parseAction(action)
			if err != nil {
				return err
			}

			sources, err := expandSources(args[:len(args)-1])
			if err != nil {
				return err
			}
			target, err := filepath.Abs(args[len(args)-1])
			if err != nil {
				return errors.Errorf("resolving target: %w", err)
			}

			res := opts.Resolver.Drop(ctx, sources, target, requested)
			opts.UserLogger.LogResult("drop", res)
			opts.Persist(ctx)
			return res.Err()
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", "auto", "force the drop action: auto, copy, move, or link")

	return cmd
}

func parseAction(raw string) (drop.Action, error) {
	switch drop.Action(raw) {
	case drop.ActionAuto, drop.ActionCopy, drop.ActionMove, drop.ActionLink:
		return drop.Action(raw), nil
	default:
		return "", errors.Errorf("unknown action %q (want auto, copy, move, or link)", raw)
	}
}
