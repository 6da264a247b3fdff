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

package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// snapshotFile is the on-disk layout of a persisted history snapshot.
type snapshotFile struct {
	Version int          `json:"version"`
	Undo    []*Operation `json:"undo"`
	Redo    []*Operation `json:"redo"`
}

// Save writes a bounded snapshot of both stacks to path. Only the most recent
// limit entries of the undo stack are kept.
func (m *Manager) Save(path string, limit int) error {
	m.mu.Lock()
	undo := m.undo
	if limit > 0 && len(undo) > limit {
		undo = undo[len(undo)-limit:]
	}
	file := snapshotFile{Version: 1, Undo: undo, Redo: m.redo}
	data, err := json.MarshalIndent(file, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return errors.Errorf("marshaling history snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Errorf("writing history snapshot: %w", err)
	}
	return nil
}

// Load replaces the stacks with a persisted snapshot. A missing file leaves
// the manager empty; a corrupt one is an error so the caller can decide
// whether to start fresh.
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Errorf("reading history snapshot: %w", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Errorf("unmarshaling history snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = file.Undo
	m.redo = file.Redo
	if len(m.undo) > m.maxSize {
		m.undo = m.undo[len(m.undo)-m.maxSize:]
	}
	return nil
}
