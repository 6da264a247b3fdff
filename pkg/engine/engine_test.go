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

package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fsops/pkg/clipboard"
	"github.com/walteh/fsops/pkg/config"
	"github.com/walteh/fsops/pkg/engine"
	"github.com/walteh/fsops/pkg/history"
	"github.com/walteh/fsops/pkg/naming"
)

// 🧪 createTestEnv creates an engine over a fresh temp tree
func createTestEnv(t *testing.T) (context.Context, *engine.Engine, string) {
	t.Helper()

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	cfg := config.Default()
	trash, err := engine.NewTrash(filepath.Join(t.TempDir(), "trash"))
	require.NoError(t, err, "creating trash")

	eng, err := engine.New(engine.Options{
		Config:    cfg,
		Naming:    naming.NewService(cfg.Naming),
		History:   history.NewManager(cfg.History.MaxSize, cfg.MergeWindow()),
		Clipboard: clipboard.New(),
		Trash:     trash,
	})
	require.NoError(t, err, "creating engine")

	return ctx, eng, t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := engine.New(engine.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestCopyIntoEmptyDir(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "src", "a.txt")
	writeFile(t, src, "alpha")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	res := eng.Copy(ctx, []string{src}, dst)
	require.True(t, res.Success, "copy should succeed: %v", res.Errors)
	assert.Equal(t, []string{filepath.Join(dst, "a.txt")}, res.ResultPaths)
	assert.True(t, fileExists(filepath.Join(dst, "a.txt")))
	assert.True(t, fileExists(src), "copy must leave the source in place")
}

func TestCopyCollisionGetsNumberedName(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "src", "note.txt")
	writeFile(t, src, "new")
	dst := filepath.Join(root, "dst")
	writeFile(t, filepath.Join(dst, "note.txt"), "old")

	res := eng.Copy(ctx, []string{src}, dst)
	require.True(t, res.Success, "collision is resolved, not surfaced: %v", res.Errors)
	assert.Equal(t, []string{filepath.Join(dst, "note_00001.txt")}, res.ResultPaths)

	original, err := os.ReadFile(filepath.Join(dst, "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(original), "existing file is untouched")
}

func TestCopyBatchContinuesPastFailures(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	good := filepath.Join(root, "src", "good.txt")
	writeFile(t, good, "ok")
	missing := filepath.Join(root, "src", "missing.txt")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	res := eng.Copy(ctx, []string{missing, good}, dst)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, missing, res.Errors[0].Path)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrNotFound)
	assert.Equal(t, []string{filepath.Join(dst, "good.txt")}, res.ResultPaths,
		"remaining items are still processed")
}

func TestCopyMissingTarget(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")

	res := eng.Copy(ctx, []string{src}, filepath.Join(root, "nope"))
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrNotFound)
}

func TestCopyIntoItselfRefused(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	a := filepath.Join(root, "a")
	writeFile(t, filepath.Join(a, "inner.txt"), "x")
	sub := filepath.Join(a, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	res := eng.Copy(ctx, []string{a}, a)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrSelfTarget)
	assert.False(t, fileExists(filepath.Join(a, "a")), "nothing is written before the refusal")

	// Dropping into the source's own subtree is the same conflict.
	res = eng.Copy(ctx, []string{a}, sub)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrSelfTarget)
	assert.False(t, fileExists(filepath.Join(sub, "a")))

	_, err := eng.History().Undo()
	assert.ErrorIs(t, err, history.ErrNothingToUndo, "refused copies record nothing")
}

func TestCopyIntoItselfDoesNotBlockSiblings(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	a := filepath.Join(root, "a")
	writeFile(t, filepath.Join(a, "inner.txt"), "x")
	b := filepath.Join(root, "b.txt")
	writeFile(t, b, "y")

	res := eng.Copy(ctx, []string{a, b}, a)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrSelfTarget)
	assert.Equal(t, []string{filepath.Join(a, "b.txt")}, res.ResultPaths,
		"the rest of the batch is still processed")
}

func TestMoveIntoOwnSubtreeRefused(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	a := filepath.Join(root, "a")
	sub := filepath.Join(a, "sub")
	writeFile(t, filepath.Join(a, "inner.txt"), "x")
	require.NoError(t, os.Mkdir(sub, 0755))

	res := eng.Move(ctx, []string{a}, sub)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrSelfTarget)
	assert.True(t, fileExists(filepath.Join(a, "inner.txt")), "the source stays in place")

	res = eng.Move(ctx, []string{a}, a)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrSelfTarget)
}

func TestCopyDirectoryTree(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	writeFile(t, filepath.Join(root, "tree", "sub", "deep.txt"), "d")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	res := eng.Copy(ctx, []string{filepath.Join(root, "tree")}, dst)
	require.True(t, res.Success, "%v", res.Errors)
	assert.True(t, fileExists(filepath.Join(dst, "tree", "sub", "deep.txt")))
}

func TestMoveRemovesSource(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "src", "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	res := eng.Move(ctx, []string{src}, dst)
	require.True(t, res.Success, "%v", res.Errors)
	assert.False(t, fileExists(src))
	assert.True(t, fileExists(filepath.Join(dst, "a.txt")))
}

func TestMoveCollisionGetsNumberedName(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "src", "doc.txt")
	writeFile(t, src, "new")
	dst := filepath.Join(root, "dst")
	writeFile(t, filepath.Join(dst, "doc.txt"), "old")

	res := eng.Move(ctx, []string{src}, dst)
	require.True(t, res.Success, "%v", res.Errors)
	assert.Equal(t, []string{filepath.Join(dst, "doc_00001.txt")}, res.ResultPaths)
}

func TestRenameSuccess(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")

	res := eng.Rename(ctx, src, "b.txt")
	require.True(t, res.Success, "%v", res.Errors)
	assert.False(t, fileExists(src))
	assert.True(t, fileExists(filepath.Join(root, "b.txt")))
}

func TestRenameConflictSurfaced(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	a := filepath.Join(root, "a.txt")
	b := filepath.Join(root, "b.txt")
	writeFile(t, a, "aaa")
	writeFile(t, b, "bbb")

	res := eng.Rename(ctx, a, "b.txt")
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrNameConflict)

	// Neither file is modified.
	dataA, _ := os.ReadFile(a)
	dataB, _ := os.ReadFile(b)
	assert.Equal(t, "aaa", string(dataA))
	assert.Equal(t, "bbb", string(dataB))
}

func TestRenameRejectsPathSeparators(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")

	res := eng.Rename(ctx, src, filepath.Join("..", "esc.txt"))
	assert.False(t, res.Success)
}

func TestDuplicateTwice(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	doc := filepath.Join(root, "document.txt")
	writeFile(t, doc, "content")

	res := eng.Duplicate(ctx, doc)
	require.True(t, res.Success, "%v", res.Errors)
	assert.Equal(t, []string{filepath.Join(root, "document_00001.txt")}, res.ResultPaths)

	res = eng.Duplicate(ctx, doc)
	require.True(t, res.Success, "%v", res.Errors)
	assert.Equal(t, []string{filepath.Join(root, "document_00002.txt")}, res.ResultPaths)
}

func TestCreateFileAndConflict(t *testing.T) {
	ctx, eng, root := createTestEnv(t)

	res := eng.CreateFile(ctx, root, "new.txt")
	require.True(t, res.Success, "%v", res.Errors)
	assert.True(t, fileExists(filepath.Join(root, "new.txt")))

	res = eng.CreateFile(ctx, root, "new.txt")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrNameConflict)
}

func TestCreateDir(t *testing.T) {
	ctx, eng, root := createTestEnv(t)

	res := eng.CreateDir(ctx, root, "sub")
	require.True(t, res.Success, "%v", res.Errors)
	assert.DirExists(t, filepath.Join(root, "sub"))

	res = eng.CreateDir(ctx, root, "sub")
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrNameConflict)
}

func TestDeleteToTrashAndUndo(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	doomed := filepath.Join(root, "doomed.txt")
	writeFile(t, doomed, "keep me")

	res := eng.Delete(ctx, []string{doomed}, false, false)
	require.True(t, res.Success, "%v", res.Errors)
	assert.False(t, fileExists(doomed), "file is parked away")

	undo := eng.Undo(ctx)
	require.True(t, undo.Success, "%v", undo.Errors)
	data, err := os.ReadFile(doomed)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data), "undo restores the exact content")
}

func TestPermanentDeleteNeedsConfirmation(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	dir := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(dir, 0755))

	res := eng.Delete(ctx, []string{dir}, true, false)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrConfirmationRequired)
	assert.DirExists(t, dir, "nothing is deleted without confirmation")

	res = eng.Delete(ctx, []string{dir}, true, true)
	require.True(t, res.Success, "%v", res.Errors)
	assert.NoDirExists(t, dir)

	_, err := eng.History().Undo()
	assert.ErrorIs(t, err, history.ErrNothingToUndo, "permanent deletes are not undoable")
}

func TestPermanentDeleteSingleFileWithoutConfirm(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	f := filepath.Join(root, "one.txt")
	writeFile(t, f, "x")

	res := eng.Delete(ctx, []string{f}, true, false)
	require.True(t, res.Success, "single plain file needs no confirmation: %v", res.Errors)
	assert.False(t, fileExists(f))
}

func TestPasteCopyModeIsRepeatable(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "note.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	eng.Clipboard().Set([]string{src}, false)

	res := eng.Paste(ctx, dst)
	require.True(t, res.Success, "%v", res.Errors)
	assert.True(t, fileExists(filepath.Join(dst, "note.txt")))

	res = eng.Paste(ctx, dst)
	require.True(t, res.Success, "copy-mode paste repeats: %v", res.Errors)
	assert.True(t, fileExists(filepath.Join(dst, "note_00001.txt")),
		"second paste into the same directory numbers the copy")
}

func TestPasteCutModeClearsClipboard(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "note.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	eng.Clipboard().Set([]string{src}, true)

	res := eng.Paste(ctx, dst)
	require.True(t, res.Success, "%v", res.Errors)
	assert.False(t, fileExists(src), "cut paste moves")

	mode, _ := eng.Clipboard().Contents()
	assert.Equal(t, clipboard.ModeEmpty, mode, "clipboard is cleared after cut paste")

	res = eng.Paste(ctx, dst)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrEmptyClipboard)
}

func TestPasteEmptyClipboardEmitsFailure(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	var events []engine.EventType
	id := eng.Notifier().Subscribe(func(ev engine.Event) {
		events = append(events, ev.Type)
	})
	defer eng.Notifier().Unsubscribe(id)

	res := eng.Paste(ctx, dst)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrEmptyClipboard)
	assert.Equal(t, []engine.EventType{
		engine.EventStarted,
		engine.EventFailed,
	}, events, "even a refused paste notifies start and failure")
}

func TestUndoCopyRemovesCopies(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	require.True(t, eng.Copy(ctx, []string{src}, dst).Success)

	undo := eng.Undo(ctx)
	require.True(t, undo.Success, "%v", undo.Errors)
	assert.False(t, fileExists(filepath.Join(dst, "a.txt")))
	assert.True(t, fileExists(src), "source is untouched by undo")

	redo := eng.Redo(ctx)
	require.True(t, redo.Success, "%v", redo.Errors)
	assert.True(t, fileExists(filepath.Join(dst, "a.txt")))
}

func TestUndoMoveRestoresOriginalLocation(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "src", "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	require.True(t, eng.Move(ctx, []string{src}, dst).Success)
	require.True(t, eng.Undo(ctx).Success)

	assert.True(t, fileExists(src))
	assert.False(t, fileExists(filepath.Join(dst, "a.txt")))
}

func TestUndoRenameRestoresName(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")

	require.True(t, eng.Rename(ctx, src, "b.txt").Success)
	require.True(t, eng.Undo(ctx).Success)

	assert.True(t, fileExists(src))
	assert.False(t, fileExists(filepath.Join(root, "b.txt")))
}

func TestUndoCreateRemovesIt(t *testing.T) {
	ctx, eng, root := createTestEnv(t)

	require.True(t, eng.CreateFile(ctx, root, "new.txt").Success)
	require.True(t, eng.Undo(ctx).Success)
	assert.False(t, fileExists(filepath.Join(root, "new.txt")))

	require.True(t, eng.Redo(ctx).Success)
	assert.True(t, fileExists(filepath.Join(root, "new.txt")))
}

func TestUndoNothingFailsCleanly(t *testing.T) {
	ctx, eng, _ := createTestEnv(t)

	res := eng.Undo(ctx)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, history.ErrNothingToUndo)

	res = eng.Redo(ctx)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, history.ErrNothingToRedo)
}

func TestUndoAfterExternalDivergence(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	require.True(t, eng.Copy(ctx, []string{src}, dst).Success)

	// Something else removes the copy before we undo.
	require.NoError(t, os.Remove(filepath.Join(dst, "a.txt")))

	res := eng.Undo(ctx)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrUndoConflict)

	// The rest of the history is intact: the operation moved to redo.
	_, redo := eng.History().Lens()
	assert.Equal(t, 1, redo)
}

func TestCancelledCopyRollsBack(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	a := filepath.Join(root, "src", "a.txt")
	b := filepath.Join(root, "src", "b.txt")
	writeFile(t, a, "x")
	writeFile(t, b, "y")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	res := eng.Copy(cancelled, []string{a, b}, dst)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Errors[0].Err, engine.ErrCancelled)
	assert.Empty(t, res.ResultPaths, "cancelled copy reports no results")
	assert.False(t, fileExists(filepath.Join(dst, "a.txt")), "partial work is rolled back")

	_, err := eng.History().Undo()
	assert.ErrorIs(t, err, history.ErrNothingToUndo, "cancelled copy records nothing")
}

func TestEventsEmitted(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	var events []engine.EventType
	id := eng.Notifier().Subscribe(func(ev engine.Event) {
		events = append(events, ev.Type)
	})
	defer eng.Notifier().Unsubscribe(id)

	require.True(t, eng.Copy(ctx, []string{src}, dst).Success)
	assert.Equal(t, []engine.EventType{
		engine.EventStarted,
		engine.EventProgress,
		engine.EventCompleted,
	}, events)

	events = nil
	eng.Copy(ctx, []string{filepath.Join(root, "ghost.txt")}, dst)
	assert.Equal(t, []engine.EventType{
		engine.EventStarted,
		engine.EventFailed,
	}, events, "failures emit the failure notification")
}

func TestPanickingObserverDoesNotFailOperation(t *testing.T) {
	ctx, eng, root := createTestEnv(t)
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	eng.Notifier().Subscribe(func(engine.Event) { panic("boom") })

	res := eng.Copy(ctx, []string{src}, dst)
	assert.True(t, res.Success, "observer panics are contained: %v", res.Errors)
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
