// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/fsops/cmd/fsops/commands"
	"github.com/walteh/fsops/cmd/fsops/opts"
	"github.com/walteh/fsops/cmd/fsops/ui"
)

func main() {
	ctx := log.Logger.WithContext(context.Background())

	// Filled in once flags are parsed
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "fsops",
		Short: "Transactional file operations with undo and redo",
		Long: `fsops copies, moves, renames, duplicates, and deletes files and
directories as recorded, reversible operations. Collisions resolve to
numbered names, deletes are recoverable from a trash, and every mutation
can be undone and redone.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			o, err := newRootOpts(cmd.Context())
			if err != nil {
				return err
			}
			*rootOpts = *o
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewCopyCmd(rootOpts),
		commands.NewMoveCmd(rootOpts),
		commands.NewRemoveCmd(rootOpts),
		commands.NewRenameCmd(rootOpts),
		commands.NewDuplicateCmd(rootOpts),
		commands.NewTouchCmd(rootOpts),
		commands.NewMkdirCmd(rootOpts),
		commands.NewDropCmd(rootOpts),
		commands.NewUndoCmd(rootOpts),
		commands.NewRedoCmd(rootOpts),
		commands.NewHistoryCmd(rootOpts),
		commands.NewTrashCmd(rootOpts),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.NewUserLogger(ctx).LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}
