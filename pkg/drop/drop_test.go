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

package drop_test

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
	"github.com/walteh/fsops/pkg/drop"
	"github.com/walteh/fsops/pkg/engine"
	"github.com/walteh/fsops/pkg/history"
	"github.com/walteh/fsops/pkg/naming"
)

func createResolver(t *testing.T) (context.Context, *drop.Resolver, *engine.Engine) {
	t.Helper()

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	cfg := config.Default()
	trash, err := engine.NewTrash(filepath.Join(t.TempDir(), "trash"))
	require.NoError(t, err)

	eng, err := engine.New(engine.Options{
		Config:    cfg,
		Naming:    naming.NewService(cfg.Naming),
		History:   history.NewManager(cfg.History.MaxSize, cfg.MergeWindow()),
		Clipboard: clipboard.New(),
		Trash:     trash,
	})
	require.NoError(t, err)

	resolver, err := drop.NewResolver(eng)
	require.NoError(t, err)
	return ctx, resolver, eng
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSelfDropOntoItselfIsNoOp(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	root := t.TempDir()
	a := filepath.Join(root, "a")
	require.NoError(t, os.Mkdir(a, 0755))

	res, err := resolver.Resolve(ctx, []string{a}, a, drop.ActionAuto)
	require.NoError(t, err)
	assert.True(t, res.NoOp)
	assert.NotEmpty(t, res.Reason)
}

func TestSelfDropOntoDescendantIsNoOp(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	root := t.TempDir()
	sub := filepath.Join(root, "a", "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	// The guard wins even when the caller forces a move.
	res, err := resolver.Resolve(ctx, []string{filepath.Join(root, "a")}, sub, drop.ActionMove)
	require.NoError(t, err)
	assert.True(t, res.NoOp, "forced actions never override the self-drop guard")
}

func TestSelfDropDoesNotBlockSiblings(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "ab"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "abc"), 0755))

	// "abc" shares a name prefix with "ab" but is not inside it.
	res, err := resolver.Resolve(ctx, []string{filepath.Join(root, "ab")}, filepath.Join(root, "abc"), drop.ActionCopy)
	require.NoError(t, err)
	assert.False(t, res.NoOp)
	assert.Equal(t, drop.ActionCopy, res.Action)
}

func TestForcedActionHonored(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	res, err := resolver.Resolve(ctx, []string{src}, dst, drop.ActionCopy)
	require.NoError(t, err)
	assert.Equal(t, drop.ActionCopy, res.Action)

	res, err = resolver.Resolve(ctx, []string{src}, dst, drop.ActionLink)
	require.NoError(t, err)
	assert.Equal(t, drop.ActionLink, res.Action)
}

func TestAutoInfersMoveOnSameVolume(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	// Both inside one temp dir, guaranteed same device.
	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	res, err := resolver.Resolve(ctx, []string{src}, dst, drop.ActionAuto)
	require.NoError(t, err)
	assert.Equal(t, drop.ActionMove, res.Action)
}

func TestAutoInferenceChecksEveryDraggedPath(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	root := t.TempDir()
	first := filepath.Join(root, "a.txt")
	writeFile(t, first, "x")
	// Neither the path nor its parent exists, so its volume is unknowable.
	unknowable := filepath.Join(root, "ghost-dir", "b.txt")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	_, err := resolver.Resolve(ctx, []string{first, unknowable}, dst, drop.ActionAuto)
	require.Error(t, err, "inference considers every dragged path, not just the first")
}

func TestDropMovesAndIsUndoable(t *testing.T) {
	ctx, resolver, eng := createResolver(t)

	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	out := resolver.Drop(ctx, []string{src}, dst, drop.ActionAuto)
	require.True(t, out.Success, "%v", out.Errors)
	assert.NoFileExists(t, src)
	assert.FileExists(t, filepath.Join(dst, "a.txt"))

	undo := eng.Undo(ctx)
	require.True(t, undo.Success, "a dispatched move undoes like any other: %v", undo.Errors)
	assert.FileExists(t, src)
}

func TestDropNoOpTouchesNothing(t *testing.T) {
	ctx, resolver, eng := createResolver(t)

	root := t.TempDir()
	a := filepath.Join(root, "a")
	writeFile(t, filepath.Join(a, "inner.txt"), "x")

	out := resolver.Drop(ctx, []string{a}, a, drop.ActionMove)
	require.True(t, out.Success)
	assert.Empty(t, out.ResultPaths)
	assert.NotEmpty(t, out.Warnings)
	assert.FileExists(t, filepath.Join(a, "inner.txt"))

	_, err := eng.History().Undo()
	assert.ErrorIs(t, err, history.ErrNothingToUndo, "a refused drop records nothing")
}

func TestForcedLinkCreatesSymlink(t *testing.T) {
	ctx, resolver, eng := createResolver(t)

	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	require.NoError(t, os.Mkdir(dst, 0755))

	out := resolver.Drop(ctx, []string{src}, dst, drop.ActionLink)
	require.True(t, out.Success, "%v", out.Errors)

	link := filepath.Join(dst, "a.txt")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, src, target)

	_, err = eng.History().Undo()
	assert.ErrorIs(t, err, history.ErrNothingToUndo, "links are not recorded")
}

func TestForcedLinkConflict(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	writeFile(t, src, "x")
	dst := filepath.Join(root, "dst")
	writeFile(t, filepath.Join(dst, "a.txt"), "occupied")

	out := resolver.Drop(ctx, []string{src}, dst, drop.ActionLink)
	assert.False(t, out.Success)
	require.Len(t, out.Errors, 1)
	assert.ErrorIs(t, out.Errors[0].Err, engine.ErrNameConflict)
}

func TestResolveRequiresDraggedPaths(t *testing.T) {
	ctx, resolver, _ := createResolver(t)

	_, err := resolver.Resolve(ctx, nil, t.TempDir(), drop.ActionAuto)
	require.Error(t, err)
}
