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

// Package engine validates, executes and records every mutating file
// operation. Each operation follows the same shape: validate, execute item by
// item (continuing past per-item failures), build the undo payload, record it
// in history when undoable, and return a combined result. Mutating operations
// are serialized on one internal mutex so undo payloads can never interleave.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/fsops/pkg/clipboard"
	"github.com/walteh/fsops/pkg/config"
	"github.com/walteh/fsops/pkg/fsio"
	"github.com/walteh/fsops/pkg/history"
	"github.com/walteh/fsops/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains the engine's collaborators
type Options struct {
	// Config is the validated engine configuration
	Config *config.Config
	// Naming issues collision-free numbered names
	Naming *naming.Service
	// History keeps the undo/redo log
	History *history.Manager
	// Clipboard holds the pending copy/cut selection
	Clipboard *clipboard.State
	// Trash parks recoverable deletes
	Trash *Trash
}

// 🎮 Engine is the public entry point for all file mutations
type Engine struct {
	mu        sync.Mutex
	cfg       *config.Config
	naming    *naming.Service
	history   *history.Manager
	clipboard *clipboard.State
	trash     *Trash
	notifier  *Notifier
}

// 🏭 New creates a new engine with the given options
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Naming == nil {
		return nil, errors.Errorf("naming service is required")
	}
	if opts.History == nil {
		return nil, errors.Errorf("history manager is required")
	}
	if opts.Clipboard == nil {
		return nil, errors.Errorf("clipboard is required")
	}
	if opts.Trash == nil {
		return nil, errors.Errorf("trash is required")
	}
	return &Engine{
		cfg:       opts.Config,
		naming:    opts.Naming,
		history:   opts.History,
		clipboard: opts.Clipboard,
		trash:     opts.Trash,
		notifier:  NewNotifier(),
	}, nil
}

// Notifier exposes the observer registry for the host UI.
func (e *Engine) Notifier() *Notifier {
	return e.notifier
}

// History exposes the undo/redo log, for peeking at labels.
func (e *Engine) History() *history.Manager {
	return e.history
}

// Clipboard exposes the selection buffer.
func (e *Engine) Clipboard() *clipboard.State {
	return e.clipboard
}

// Trash exposes the delete parking lot, for listing and purging.
func (e *Engine) Trash() *Trash {
	return e.trash
}

// ItemError binds a failure to the source path it concerns.
type ItemError struct {
	Path string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Result is the combined outcome of one operation. Batch operations report
// per-item failures here instead of aborting on the first one.
type Result struct {
	Success     bool
	ResultPaths []string
	Errors      []ItemError
	Warnings    []string
}

// Err flattens the result into a single error, nil on success.
func (r Result) Err() error {
	if r.Success || len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0].Err
}

func failure(path string, err error) Result {
	return Result{Errors: []ItemError{{Path: path, Err: err}}}
}

// begin emits the start notification and logs the operation intent.
func (e *Engine) begin(ctx context.Context, kind history.Kind, sources []string) {
	logger := zerolog.Ctx(ctx)
	if kind == history.KindCopy || kind == history.KindMove || kind == history.KindDelete {
		if totals, err := fsio.Measure(ctx, sources); err == nil {
			logger.Debug().
				Str("kind", string(kind)).
				Int64("files", totals.Files).
				Int64("bytes", totals.Bytes).
				Msg("operation starting")
		}
	}
	e.notifier.emit(logger, Event{Type: EventStarted, Kind: kind, Sources: sources, Total: len(sources)})
}

// finish records the operation when undoable, emits the completion or failure
// notification, and returns the result.
func (e *Engine) finish(ctx context.Context, kind history.Kind, sources []string, target string, op *history.Operation, res Result) Result {
	logger := zerolog.Ctx(ctx)

	if op != nil && op.Undoable {
		if err := e.history.Record(op); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("history: %v", err))
		}
	}

	res.Success = len(res.Errors) == 0
	if res.Success {
		e.notifier.emit(logger, Event{Type: EventCompleted, Kind: kind, Sources: sources, Target: target})
	} else {
		e.notifier.emit(logger, Event{Type: EventFailed, Kind: kind, Sources: sources, Target: target, Err: res.Err()})
	}
	return res
}

// progress reports per-item progress to observers.
func (e *Engine) progress(ctx context.Context, kind history.Kind, done, total int) {
	e.notifier.emit(zerolog.Ctx(ctx), Event{Type: EventProgress, Kind: kind, Done: done, Total: total})
}
