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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/walteh/fsops/pkg/fsio"
	"github.com/walteh/fsops/pkg/history"
	"gitlab.com/tozd/go/errors"
)

var trashSeq atomic.Int64

// Trash parks recoverably deleted paths under a dedicated root, one slot
// directory per entry, so deletes can be undone without re-scanning anything.
type Trash struct {
	root string
}

// NewTrash creates (if needed) and opens a trash root.
func NewTrash(root string) (*Trash, error) {
	if root == "" {
		return nil, errors.New("trash root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Errorf("creating trash root: %w", err)
	}
	return &Trash{root: root}, nil
}

// Root returns the trash root directory.
func (t *Trash) Root() string {
	return t.root
}

// Put moves path into a fresh trash slot and returns the entry that restores
// it.
func (t *Trash) Put(ctx context.Context, path string) (history.TrashEntry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return history.TrashEntry{}, errors.Errorf("stating %s: %w", path, err)
	}

	id := fmt.Sprintf("%d-%06d", time.Now().UnixNano(), trashSeq.Add(1))
	slotDir := filepath.Join(t.root, id)

	// The payload lives under data/ so it can never collide with meta.json.
	if err := os.MkdirAll(filepath.Join(slotDir, "data"), 0755); err != nil {
		return history.TrashEntry{}, errors.Errorf("creating trash slot: %w", err)
	}

	slot := filepath.Join(slotDir, "data", filepath.Base(path))
	if _, err := fsio.Move(ctx, path, slot); err != nil {
		_ = os.RemoveAll(slotDir)
		return history.TrashEntry{}, err
	}

	entry := history.TrashEntry{
		ID:    id,
		From:  path,
		Slot:  slot,
		IsDir: info.IsDir(),
	}
	if err := t.writeMeta(slotDir, entry); err != nil {
		return history.TrashEntry{}, err
	}
	return entry, nil
}

// Restore moves an entry back to its original location. It fails when the
// slot has vanished or the original location has been re-occupied.
func (t *Trash) Restore(ctx context.Context, entry history.TrashEntry) error {
	if !fsio.Exists(entry.Slot) {
		return errors.Errorf("trash slot %s: %w", entry.Slot, ErrNotFound)
	}
	if fsio.Exists(entry.From) {
		return errors.Errorf("restoring %s: %w", entry.From, ErrNameConflict)
	}
	if err := os.MkdirAll(filepath.Dir(entry.From), 0755); err != nil {
		return errors.Errorf("recreating parent of %s: %w", entry.From, err)
	}
	if _, err := fsio.Move(ctx, entry.Slot, entry.From); err != nil {
		return err
	}
	_ = os.RemoveAll(filepath.Join(t.root, entry.ID))
	return nil
}

// Purge permanently removes a parked entry.
func (t *Trash) Purge(entry history.TrashEntry) error {
	return fsio.Remove(filepath.Join(t.root, entry.ID))
}

// Entries lists everything currently parked, oldest first.
func (t *Trash) Entries() ([]history.TrashEntry, error) {
	ids, err := fsio.ListNames(t.root)
	if err != nil {
		return nil, err
	}

	var entries []history.TrashEntry
	for _, id := range ids {
		data, err := os.ReadFile(filepath.Join(t.root, id, "meta.json"))
		if err != nil {
			continue // slot without metadata, skip
		}
		var entry history.TrashEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (t *Trash) writeMeta(slotDir string, entry history.TrashEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling trash metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(slotDir, "meta.json"), data, 0644); err != nil {
		return errors.Errorf("writing trash metadata: %w", err)
	}
	return nil
}
