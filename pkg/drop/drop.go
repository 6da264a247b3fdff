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

// 📦 Package drop maps a drag-and-drop gesture onto a concrete engine
// operation. It decides WHICH operation runs (copy, move, or link); it is not
// involved in how a drag is presented.
package drop

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/fsops/pkg/engine"
	"github.com/walteh/fsops/pkg/fsio"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Action is the caller's intent for a drop, usually derived from modifier
// keys. ActionAuto leaves the decision to volume inference.
type Action string

const (
	ActionAuto Action = "auto"
	ActionCopy Action = "copy"
	ActionMove Action = "move"
	ActionLink Action = "link"
)

// Resolution is the outcome of resolving a gesture: the effective action, or a
// refusal with the reason attached.
type Resolution struct {
	Action Action
	NoOp   bool
	Reason string
}

// 🔧 Resolver turns gestures into engine calls.
type Resolver struct {
	engine *engine.Engine
}

// NewResolver creates a resolver bound to an engine.
func NewResolver(eng *engine.Engine) (*Resolver, error) {
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	return &Resolver{engine: eng}, nil
}

// Resolve decides what a drop should do, in order: the self-drop guard, then
// any forced action, then same-volume inference. The guard runs first so a
// destructive move into a dragged subtree can never reach the filesystem
// layer.
func (r *Resolver) Resolve(ctx context.Context, dragged []string, targetDir string, requested Action) (Resolution, error) {
	logger := zerolog.Ctx(ctx)

	if len(dragged) == 0 {
		return Resolution{}, errors.New("nothing dragged")
	}

	for _, src := range dragged {
		if isSelfDrop(src, targetDir) {
			logger.Debug().
				Str("dragged", src).
				Str("target", targetDir).
				Msg("self-drop refused")
			return Resolution{
				NoOp:   true,
				Reason: "cannot drop " + filepath.Base(src) + " into itself",
			}, nil
		}
	}

	if requested != ActionAuto && requested != "" {
		return Resolution{Action: requested}, nil
	}

	// Same volume means a plain rename is possible, so the natural gesture is
	// a move. Crossing volumes would copy anyway, so make it an honest copy.
	// One gesture resolves to one action: if any dragged path crosses
	// volumes, the whole drop is a copy.
	for _, src := range dragged {
		same, err := fsio.SameVolume(src, targetDir)
		if err != nil {
			return Resolution{}, errors.Errorf("inferring drop action: %w", err)
		}
		if !same {
			return Resolution{Action: ActionCopy}, nil
		}
	}
	return Resolution{Action: ActionMove}, nil
}

// Dispatch executes a resolution. No-ops succeed without touching anything.
// Links are created directly and are not recorded in history.
func (r *Resolver) Dispatch(ctx context.Context, res Resolution, dragged []string, targetDir string) engine.Result {
	if res.NoOp {
		zerolog.Ctx(ctx).Info().Str("reason", res.Reason).Msg("drop resolved to no-op")
		return engine.Result{Success: true, Warnings: []string{res.Reason}}
	}

	switch res.Action {
	case ActionCopy:
		return r.engine.Copy(ctx, dragged, targetDir)
	case ActionMove:
		return r.engine.Move(ctx, dragged, targetDir)
	case ActionLink:
		return r.link(dragged, targetDir)
	default:
		out := engine.Result{}
		out.Errors = append(out.Errors, engine.ItemError{Err: errors.Errorf("unknown drop action %q", res.Action)})
		return out
	}
}

// Drop resolves and dispatches in one step.
func (r *Resolver) Drop(ctx context.Context, dragged []string, targetDir string, requested Action) engine.Result {
	res, err := r.Resolve(ctx, dragged, targetDir, requested)
	if err != nil {
		out := engine.Result{}
		out.Errors = append(out.Errors, engine.ItemError{Path: targetDir, Err: err})
		return out
	}
	return r.Dispatch(ctx, res, dragged, targetDir)
}

func (r *Resolver) link(dragged []string, targetDir string) engine.Result {
	var out engine.Result
	for _, src := range dragged {
		dst := filepath.Join(targetDir, filepath.Base(src))
		if fsio.Exists(dst) {
			out.Errors = append(out.Errors, engine.ItemError{Path: dst, Err: errors.Errorf("%s: %w", dst, engine.ErrNameConflict)})
			continue
		}
		if err := fsio.Symlink(src, dst); err != nil {
			out.Errors = append(out.Errors, engine.ItemError{Path: src, Err: err})
			continue
		}
		out.ResultPaths = append(out.ResultPaths, dst)
	}
	out.Success = len(out.Errors) == 0
	return out
}

// isSelfDrop reports whether target is src itself or lives inside it.
func isSelfDrop(src, target string) bool {
	src = filepath.Clean(src)
	target = filepath.Clean(target)
	if src == target {
		return true
	}
	return strings.HasPrefix(target, src+string(filepath.Separator))
}
