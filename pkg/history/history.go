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

// Package history keeps the reversible operation log: an undo stack and a
// redo stack of recorded operations. Every operation lives in exactly one of
// the two stacks (or has been evicted); undo and redo move it between them
// atomically, and recording anything new clears the redo stack wholesale.
package history

import (
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNothingToUndo signals an empty undo stack.
	ErrNothingToUndo = errors.Base("nothing to undo")

	// ErrNothingToRedo signals an empty redo stack.
	ErrNothingToRedo = errors.Base("nothing to redo")
)

// Manager owns the undo and redo stacks. Safe for concurrent use.
type Manager struct {
	mu          sync.Mutex
	undo        []*Operation
	redo        []*Operation
	maxSize     int
	mergeWindow time.Duration
}

// NewManager creates a history manager. maxSize bounds the undo stack;
// mergeWindow of zero disables rename merging.
func NewManager(maxSize int, mergeWindow time.Duration) *Manager {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Manager{maxSize: maxSize, mergeWindow: mergeWindow}
}

// Record pushes a completed operation onto the undo stack and clears the redo
// stack. Call it only for operations that succeeded. An undoable operation
// must carry a payload that alone determines the reverse action.
func (m *Manager) Record(op *Operation) error {
	if op == nil {
		return errors.New("nil operation")
	}
	if op.Undoable && op.Payload.Empty() {
		return errors.Errorf("undoable %s operation has an empty undo payload", op.Kind)
	}
	if op.Description == "" {
		op.Description = Describe(op)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.redo = nil

	if m.tryMerge(op) {
		return nil
	}

	m.undo = append(m.undo, op)
	if len(m.undo) > m.maxSize {
		// Oldest entry only; the redo stack is never pruned by size.
		m.undo = m.undo[len(m.undo)-m.maxSize:]
	}
	return nil
}

// tryMerge collapses two rapid renames of the same entry into one record that
// maps the original name to the final one. Merging replaces the stack top in
// place, so stack depth never changes. Heuristic only: correctness of undo
// does not depend on it.
func (m *Manager) tryMerge(op *Operation) bool {
	if m.mergeWindow <= 0 || op.Kind != KindRename || len(m.undo) == 0 {
		return false
	}
	top := m.undo[len(m.undo)-1]
	if top.Kind != KindRename || !top.Undoable || !op.Undoable {
		return false
	}
	if op.Timestamp.Sub(top.Timestamp) > m.mergeWindow {
		return false
	}
	if len(op.SourcePaths) != 1 || op.SourcePaths[0] != top.TargetPath {
		return false
	}

	merged := &Operation{
		Kind:        KindRename,
		SourcePaths: top.SourcePaths,
		TargetPath:  op.TargetPath,
		Timestamp:   op.Timestamp,
		Undoable:    true,
		Payload:     Payload{RenamedFrom: top.Payload.RenamedFrom},
	}
	merged.Description = Describe(merged)
	m.undo[len(m.undo)-1] = merged
	return true
}

// Undo pops the most recent operation and parks it on the redo stack. The
// caller is responsible for physically reversing the filesystem effect.
func (m *Manager) Undo() (*Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.undo) == 0 {
		return nil, errors.WithStack(ErrNothingToUndo)
	}
	op := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, op)
	return op, nil
}

// Redo is the symmetric inverse of Undo.
func (m *Manager) Redo() (*Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.redo) == 0 {
		return nil, errors.WithStack(ErrNothingToRedo)
	}
	op := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, op)
	return op, nil
}

// PeekUndo returns the operation Undo would return, without moving it.
func (m *Manager) PeekUndo() (*Operation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return nil, false
	}
	return m.undo[len(m.undo)-1], true
}

// PeekRedo returns the operation Redo would return, without moving it.
func (m *Manager) PeekRedo() (*Operation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return nil, false
	}
	return m.redo[len(m.redo)-1], true
}

// Lens reports the current undo and redo stack depths.
func (m *Manager) Lens() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

// Recent returns up to limit most-recent undoable descriptions, newest first.
func (m *Manager) Recent(limit int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, limit)
	for i := len(m.undo) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.undo[i].Description)
	}
	return out
}
