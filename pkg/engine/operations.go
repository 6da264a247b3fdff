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
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/fsops/pkg/clipboard"
	"github.com/walteh/fsops/pkg/fsio"
	"github.com/walteh/fsops/pkg/history"
	"gitlab.com/tozd/go/errors"
)

// 📦 Copy copies every source into targetDir. A same-named entry at the
// target is never overwritten: the copy receives a numbered name instead.
func (e *Engine) Copy(ctx context.Context, paths []string, targetDir string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLocked(ctx, history.KindCopy, paths, targetDir)
}

func (e *Engine) copyLocked(ctx context.Context, kind history.Kind, paths []string, targetDir string) Result {
	e.begin(ctx, kind, paths)

	var res Result
	if !fsio.IsDir(targetDir) {
		res = failure(targetDir, errors.Errorf("target: %w", ErrNotFound))
		return e.finish(ctx, kind, paths, targetDir, nil, res)
	}

	var pairs []history.PathPair
	for i, src := range paths {
		if err := ctx.Err(); err != nil {
			// Roll back everything copied so far: a cancelled copy
			// leaves no trace.
			e.rollbackCreated(ctx, pairs)
			pairs = nil
			res.ResultPaths = nil
			res.Errors = append(res.Errors, ItemError{Path: src, Err: errors.Errorf("%s: %w", src, ErrCancelled)})
			break
		}

		if !fsio.Exists(src) {
			res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(os.ErrNotExist, src)})
			continue
		}

		// Copying a directory into itself would re-read the growing
		// destination on every level; refuse before touching anything.
		if isWithin(src, targetDir) {
			res.Errors = append(res.Errors, ItemError{Path: src, Err: errors.Errorf("%s: %w", src, ErrSelfTarget)})
			continue
		}

		dst := filepath.Join(targetDir, filepath.Base(src))
		if fsio.Exists(dst) {
			numbered, err := e.naming.GenerateNumberedName(ctx, dst)
			if err != nil {
				res.Errors = append(res.Errors, ItemError{Path: src, Err: err})
				continue
			}
			dst = numbered
		}

		if err := fsio.CopyTree(ctx, src, dst); err != nil {
			_ = os.RemoveAll(dst) // partial copies are removed, not reported as results
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				e.rollbackCreated(ctx, pairs)
				pairs = nil
				res.ResultPaths = nil
				res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(err, src)})
				break
			}
			res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(err, src)})
			continue
		}

		pairs = append(pairs, history.PathPair{From: src, To: dst})
		res.ResultPaths = append(res.ResultPaths, dst)
		e.progress(ctx, kind, i+1, len(paths))
	}

	var op *history.Operation
	if len(pairs) > 0 {
		op = &history.Operation{
			Kind:        kind,
			SourcePaths: paths,
			TargetPath:  targetDir,
			Timestamp:   time.Now(),
			Undoable:    true,
			Payload:     history.Payload{CopiedPairs: pairs},
		}
	}
	return e.finish(ctx, kind, paths, targetDir, op, res)
}

// 🚚 Move moves every source into targetDir, with the same collision policy
// as Copy.
func (e *Engine) Move(ctx context.Context, paths []string, targetDir string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moveLocked(ctx, paths, targetDir)
}

func (e *Engine) moveLocked(ctx context.Context, paths []string, targetDir string) Result {
	kind := history.KindMove
	e.begin(ctx, kind, paths)

	var res Result
	if !fsio.IsDir(targetDir) {
		res = failure(targetDir, errors.Errorf("target: %w", ErrNotFound))
		return e.finish(ctx, kind, paths, targetDir, nil, res)
	}

	var pairs []history.PathPair
	for i, src := range paths {
		if err := ctx.Err(); err != nil {
			// Move everything already relocated back where it came from.
			e.rollbackMoved(ctx, pairs)
			pairs = nil
			res.ResultPaths = nil
			res.Errors = append(res.Errors, ItemError{Path: src, Err: errors.Errorf("%s: %w", src, ErrCancelled)})
			break
		}

		if !fsio.Exists(src) {
			res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(os.ErrNotExist, src)})
			continue
		}

		// A move into the source itself or its own subtree can never be
		// satisfied; refuse before touching anything.
		if isWithin(src, targetDir) {
			res.Errors = append(res.Errors, ItemError{Path: src, Err: errors.Errorf("%s: %w", src, ErrSelfTarget)})
			continue
		}

		dst := filepath.Join(targetDir, filepath.Base(src))
		if fsio.Exists(dst) {
			numbered, err := e.naming.GenerateNumberedName(ctx, dst)
			if err != nil {
				res.Errors = append(res.Errors, ItemError{Path: src, Err: err})
				continue
			}
			dst = numbered
		}

		if _, err := fsio.Move(ctx, src, dst); err != nil {
			res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(err, src)})
			continue
		}

		pairs = append(pairs, history.PathPair{From: src, To: dst})
		res.ResultPaths = append(res.ResultPaths, dst)
		e.progress(ctx, kind, i+1, len(paths))
	}

	var op *history.Operation
	if len(pairs) > 0 {
		op = &history.Operation{
			Kind:        kind,
			SourcePaths: paths,
			TargetPath:  targetDir,
			Timestamp:   time.Now(),
			Undoable:    true,
			Payload:     history.Payload{MovedPairs: pairs},
		}
	}
	return e.finish(ctx, kind, paths, targetDir, op, res)
}

// 🗑️ Delete removes every source. Without permanent the items are parked in
// the trash and the delete is undoable. Permanent deletion of a directory or
// of a multi-item selection must be confirmed explicitly by the caller.
func (e *Engine) Delete(ctx context.Context, paths []string, permanent, confirm bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	kind := history.KindDelete
	e.begin(ctx, kind, paths)

	var res Result
	if permanent && !confirm {
		needsConfirm := len(paths) > 1
		for _, p := range paths {
			if fsio.IsDir(p) {
				needsConfirm = true
				break
			}
		}
		if needsConfirm {
			res = failure("", errors.Errorf("permanent delete of directories or multiple items: %w", ErrConfirmationRequired))
			return e.finish(ctx, kind, paths, "", nil, res)
		}
	}

	var entries []history.TrashEntry
	for i, src := range paths {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, ItemError{Path: src, Err: errors.Errorf("%s: %w", src, ErrCancelled)})
			break
		}

		if !fsio.Exists(src) {
			res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(os.ErrNotExist, src)})
			continue
		}

		if permanent {
			if err := fsio.Remove(src); err != nil {
				res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(err, src)})
				continue
			}
		} else {
			entry, err := e.trash.Put(ctx, src)
			if err != nil {
				res.Errors = append(res.Errors, ItemError{Path: src, Err: classify(err, src)})
				continue
			}
			entries = append(entries, entry)
		}
		res.ResultPaths = append(res.ResultPaths, src)
		e.progress(ctx, kind, i+1, len(paths))
	}

	var op *history.Operation
	if !permanent && len(entries) > 0 {
		op = &history.Operation{
			Kind:        kind,
			SourcePaths: paths,
			Timestamp:   time.Now(),
			Undoable:    true,
			Payload:     history.Payload{TrashEntries: entries},
		}
	}
	return e.finish(ctx, kind, paths, "", op, res)
}

// ✏️ Rename renames a single entry in place. A collision with an existing
// name is surfaced, never resolved automatically: the name was the user's
// explicit choice.
func (e *Engine) Rename(ctx context.Context, path, newName string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	kind := history.KindRename
	sources := []string{path}
	e.begin(ctx, kind, sources)

	var res Result
	newPath := filepath.Join(filepath.Dir(path), newName)
	switch {
	case newName == "" || newName != filepath.Base(newName):
		res = failure(path, errors.Errorf("invalid name %q", newName))
	case !fsio.Exists(path):
		res = failure(path, classify(os.ErrNotExist, path))
	case fsio.Exists(newPath):
		res = failure(path, errors.Errorf("%s: %w", newPath, ErrNameConflict))
	default:
		if err := os.Rename(path, newPath); err != nil {
			res = failure(path, classify(err, path))
		} else {
			res.ResultPaths = []string{newPath}
		}
	}

	var op *history.Operation
	if len(res.Errors) == 0 {
		op = &history.Operation{
			Kind:        kind,
			SourcePaths: sources,
			TargetPath:  newPath,
			Timestamp:   time.Now(),
			Undoable:    true,
			Payload:     history.Payload{RenamedFrom: path},
		}
	}
	return e.finish(ctx, kind, sources, newPath, op, res)
}

// 📑 Duplicate copies path next to itself under the next numbered name.
func (e *Engine) Duplicate(ctx context.Context, path string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	kind := history.KindDuplicate
	sources := []string{path}
	e.begin(ctx, kind, sources)

	var res Result
	var newPath string
	if !fsio.Exists(path) {
		res = failure(path, classify(os.ErrNotExist, path))
	} else {
		var err error
		newPath, err = e.naming.GenerateNumberedName(ctx, path)
		if err != nil {
			res = failure(path, err)
		} else if err := fsio.CopyTree(ctx, path, newPath); err != nil {
			_ = os.RemoveAll(newPath)
			res = failure(path, classify(err, path))
		} else {
			res.ResultPaths = []string{newPath}
		}
	}

	var op *history.Operation
	if len(res.Errors) == 0 {
		op = &history.Operation{
			Kind:        kind,
			SourcePaths: sources,
			TargetPath:  newPath,
			Timestamp:   time.Now(),
			Undoable:    true,
			Payload:     history.Payload{CopiedPairs: []history.PathPair{{From: path, To: newPath}}},
		}
	}
	return e.finish(ctx, kind, sources, newPath, op, res)
}

// 📄 CreateFile creates an empty file in parentDir. An existing entry with
// the same name is a conflict, surfaced to the caller.
func (e *Engine) CreateFile(ctx context.Context, parentDir, name string) Result {
	return e.create(ctx, history.KindCreateFile, parentDir, name)
}

// 📁 CreateDir creates a directory in parentDir, with the same conflict
// policy as CreateFile.
func (e *Engine) CreateDir(ctx context.Context, parentDir, name string) Result {
	return e.create(ctx, history.KindCreateDir, parentDir, name)
}

func (e *Engine) create(ctx context.Context, kind history.Kind, parentDir, name string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	path := filepath.Join(parentDir, name)
	sources := []string{path}
	e.begin(ctx, kind, sources)

	var res Result
	switch {
	case name == "" || name != filepath.Base(name):
		res = failure(path, errors.Errorf("invalid name %q", name))
	case !fsio.IsDir(parentDir):
		res = failure(parentDir, errors.Errorf("parent: %w", ErrNotFound))
	case fsio.Exists(path):
		res = failure(path, errors.Errorf("%s: %w", path, ErrNameConflict))
	default:
		var err error
		if kind == history.KindCreateFile {
			err = fsio.CreateFile(path)
		} else {
			err = fsio.CreateDir(path)
		}
		if err != nil {
			res = failure(path, classify(err, path))
		} else {
			res.ResultPaths = []string{path}
		}
	}

	var op *history.Operation
	if len(res.Errors) == 0 {
		op = &history.Operation{
			Kind:        kind,
			SourcePaths: sources,
			TargetPath:  path,
			Timestamp:   time.Now(),
			Undoable:    true,
			Payload:     history.Payload{CreatedPaths: []string{path}},
		}
	}
	return e.finish(ctx, kind, sources, path, op, res)
}

// 📋 Paste consumes the clipboard into targetDir: copy mode delegates to
// Copy and keeps the clipboard for repeated pastes; cut mode delegates to
// Move and clears the clipboard once the move succeeded.
func (e *Engine) Paste(ctx context.Context, targetDir string) Result {
	mode, paths := e.clipboard.Contents()
	if mode == clipboard.ModeEmpty || len(paths) == 0 {
		zerolog.Ctx(ctx).Debug().Msg("paste with empty clipboard")
		e.begin(ctx, kindPaste, nil)
		res := failure(targetDir, errors.WithStack(ErrEmptyClipboard))
		return e.finish(ctx, kindPaste, nil, targetDir, nil, res)
	}

	switch mode {
	case clipboard.ModeCut:
		res := e.Move(ctx, paths, targetDir)
		if res.Success {
			e.clipboard.Clear()
		}
		return res
	default:
		return e.Copy(ctx, paths, targetDir)
	}
}

// kindPaste labels paste notifications. Paste itself is never recorded; the
// delegated copy or move is.
const kindPaste = history.Kind("paste")

// isWithin reports whether target equals src or lives inside it.
func isWithin(src, target string) bool {
	src = filepath.Clean(src)
	target = filepath.Clean(target)
	if src == target {
		return true
	}
	return strings.HasPrefix(target, src+string(filepath.Separator))
}

// rollbackCreated removes paths created before a cancellation.
func (e *Engine) rollbackCreated(ctx context.Context, pairs []history.PathPair) {
	logger := zerolog.Ctx(ctx)
	for i := len(pairs) - 1; i >= 0; i-- {
		if err := os.RemoveAll(pairs[i].To); err != nil {
			logger.Warn().Err(err).Str("path", pairs[i].To).Msg("rollback failed")
		}
	}
}

// rollbackMoved returns relocated paths to their origins after a
// cancellation.
func (e *Engine) rollbackMoved(ctx context.Context, pairs []history.PathPair) {
	logger := zerolog.Ctx(ctx)
	for i := len(pairs) - 1; i >= 0; i-- {
		if _, err := fsio.Move(context.WithoutCancel(ctx), pairs[i].To, pairs[i].From); err != nil {
			logger.Warn().Err(err).Str("path", pairs[i].To).Msg("rollback failed")
		}
	}
}
