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

package engine

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/fsops/pkg/fsio"
	"github.com/walteh/fsops/pkg/history"
	"gitlab.com/tozd/go/errors"
)

// ⏪ Undo reverses the most recent recorded operation using its undo payload.
// When the filesystem has diverged since the operation ran (something else
// removed or replaced the affected paths), the affected entries fail with
// ErrUndoConflict; the rest of the payload is still reversed and the
// remaining history stays intact.
func (e *Engine) Undo(ctx context.Context) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	op, err := e.history.Undo()
	if err != nil {
		return failure("", err)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("description", op.Description).Msg("undoing")

	var res Result
	switch op.Kind {
	case history.KindCopy, history.KindDuplicate:
		for i := len(op.Payload.CopiedPairs) - 1; i >= 0; i-- {
			created := op.Payload.CopiedPairs[i].To
			if !fsio.Exists(created) {
				res.Errors = append(res.Errors, ItemError{Path: created, Err: errors.Errorf("%s: %w", created, ErrUndoConflict)})
				continue
			}
			if err := fsio.Remove(created); err != nil {
				res.Errors = append(res.Errors, ItemError{Path: created, Err: classify(err, created)})
				continue
			}
			res.ResultPaths = append(res.ResultPaths, created)
		}

	case history.KindCreateFile, history.KindCreateDir:
		for i := len(op.Payload.CreatedPaths) - 1; i >= 0; i-- {
			created := op.Payload.CreatedPaths[i]
			if !fsio.Exists(created) {
				res.Errors = append(res.Errors, ItemError{Path: created, Err: errors.Errorf("%s: %w", created, ErrUndoConflict)})
				continue
			}
			if err := fsio.Remove(created); err != nil {
				res.Errors = append(res.Errors, ItemError{Path: created, Err: classify(err, created)})
				continue
			}
			res.ResultPaths = append(res.ResultPaths, created)
		}

	case history.KindMove:
		for i := len(op.Payload.MovedPairs) - 1; i >= 0; i-- {
			pair := op.Payload.MovedPairs[i]
			if err := e.moveBack(ctx, pair.To, pair.From); err != nil {
				res.Errors = append(res.Errors, ItemError{Path: pair.To, Err: err})
				continue
			}
			res.ResultPaths = append(res.ResultPaths, pair.From)
		}

	case history.KindRename:
		if err := e.moveBack(ctx, op.TargetPath, op.Payload.RenamedFrom); err != nil {
			res.Errors = append(res.Errors, ItemError{Path: op.TargetPath, Err: err})
		} else {
			res.ResultPaths = append(res.ResultPaths, op.Payload.RenamedFrom)
		}

	case history.KindDelete:
		for i := len(op.Payload.TrashEntries) - 1; i >= 0; i-- {
			entry := op.Payload.TrashEntries[i]
			if err := e.trash.Restore(ctx, entry); err != nil {
				res.Errors = append(res.Errors, ItemError{Path: entry.From, Err: err})
				continue
			}
			res.ResultPaths = append(res.ResultPaths, entry.From)
		}

	default:
		res.Errors = append(res.Errors, ItemError{Err: errors.Errorf("cannot undo %s", op.Kind)})
	}

	res.Success = len(res.Errors) == 0
	return res
}

// ⏩ Redo replays the most recently undone operation.
func (e *Engine) Redo(ctx context.Context) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	op, err := e.history.Redo()
	if err != nil {
		return failure("", err)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("description", op.Description).Msg("redoing")

	var res Result
	switch op.Kind {
	case history.KindCopy, history.KindDuplicate:
		for _, pair := range op.Payload.CopiedPairs {
			if !fsio.Exists(pair.From) || fsio.Exists(pair.To) {
				res.Errors = append(res.Errors, ItemError{Path: pair.From, Err: errors.Errorf("%s: %w", pair.From, ErrUndoConflict)})
				continue
			}
			if err := fsio.CopyTree(ctx, pair.From, pair.To); err != nil {
				_ = os.RemoveAll(pair.To)
				res.Errors = append(res.Errors, ItemError{Path: pair.From, Err: classify(err, pair.From)})
				continue
			}
			res.ResultPaths = append(res.ResultPaths, pair.To)
		}

	case history.KindCreateFile, history.KindCreateDir:
		for _, created := range op.Payload.CreatedPaths {
			var err error
			if op.Kind == history.KindCreateFile {
				err = fsio.CreateFile(created)
			} else {
				err = fsio.CreateDir(created)
			}
			if err != nil {
				res.Errors = append(res.Errors, ItemError{Path: created, Err: classify(err, created)})
				continue
			}
			res.ResultPaths = append(res.ResultPaths, created)
		}

	case history.KindMove:
		for _, pair := range op.Payload.MovedPairs {
			if err := e.moveBack(ctx, pair.From, pair.To); err != nil {
				res.Errors = append(res.Errors, ItemError{Path: pair.From, Err: err})
				continue
			}
			res.ResultPaths = append(res.ResultPaths, pair.To)
		}

	case history.KindRename:
		if err := e.moveBack(ctx, op.Payload.RenamedFrom, op.TargetPath); err != nil {
			res.Errors = append(res.Errors, ItemError{Path: op.Payload.RenamedFrom, Err: err})
		} else {
			res.ResultPaths = append(res.ResultPaths, op.TargetPath)
		}

	case history.KindDelete:
		// Re-parking produces fresh trash slots; the payload is updated so
		// the next undo restores from the new slots.
		entries := make([]history.TrashEntry, 0, len(op.Payload.TrashEntries))
		for _, old := range op.Payload.TrashEntries {
			if !fsio.Exists(old.From) {
				res.Errors = append(res.Errors, ItemError{Path: old.From, Err: errors.Errorf("%s: %w", old.From, ErrUndoConflict)})
				continue
			}
			entry, err := e.trash.Put(ctx, old.From)
			if err != nil {
				res.Errors = append(res.Errors, ItemError{Path: old.From, Err: classify(err, old.From)})
				continue
			}
			entries = append(entries, entry)
			res.ResultPaths = append(res.ResultPaths, old.From)
		}
		if len(entries) > 0 {
			op.Payload.TrashEntries = entries
		}

	default:
		res.Errors = append(res.Errors, ItemError{Err: errors.Errorf("cannot redo %s", op.Kind)})
	}

	res.Success = len(res.Errors) == 0
	return res
}

// moveBack relocates one path during undo/redo, failing with ErrUndoConflict
// when the source vanished or the destination has been re-occupied.
func (e *Engine) moveBack(ctx context.Context, from, to string) error {
	if !fsio.Exists(from) {
		return errors.Errorf("%s: %w", from, ErrUndoConflict)
	}
	if fsio.Exists(to) {
		return errors.Errorf("%s: %w", to, ErrUndoConflict)
	}
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return classify(err, to)
	}
	if _, err := fsio.Move(ctx, from, to); err != nil {
		return classify(err, from)
	}
	return nil
}
