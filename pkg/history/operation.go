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
	"fmt"
	"path/filepath"
	"time"
)

// Kind identifies one category of filesystem mutation.
type Kind string

const (
	KindCopy       Kind = "copy"
	KindMove       Kind = "move"
	KindDelete     Kind = "delete"
	KindRename     Kind = "rename"
	KindCreateFile Kind = "create_file"
	KindCreateDir  Kind = "create_directory"
	KindDuplicate  Kind = "duplicate"
)

// PathPair records one source path mapped to a destination path.
type PathPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TrashEntry records one path parked in the trash for a recoverable delete.
type TrashEntry struct {
	ID   string `json:"id"`
	From string `json:"from"`
	// Slot is the parked location inside the trash root
	Slot  string `json:"slot"`
	IsDir bool   `json:"is_dir"`
}

// Payload is the undo payload: the minimal data needed to reverse an
// operation without rescanning the filesystem.
type Payload struct {
	// CreatedPaths lists paths brought into existence; undo removes them
	CreatedPaths []string `json:"created_paths,omitempty"`

	// CopiedPairs lists copies; undo removes each To, redo re-copies From
	CopiedPairs []PathPair `json:"copied_pairs,omitempty"`

	// MovedPairs lists relocations; undo moves each back
	MovedPairs []PathPair `json:"moved_pairs,omitempty"`

	// RenamedFrom holds the original path of a rename; undo renames back
	RenamedFrom string `json:"renamed_from,omitempty"`

	// TrashEntries lists parked deletes; undo restores each
	TrashEntries []TrashEntry `json:"trash_entries,omitempty"`
}

// Empty reports whether the payload carries nothing to reverse.
func (p Payload) Empty() bool {
	return len(p.CreatedPaths) == 0 && len(p.CopiedPairs) == 0 &&
		len(p.MovedPairs) == 0 && p.RenamedFrom == "" && len(p.TrashEntries) == 0
}

// Operation is an immutable record of one executed mutation.
type Operation struct {
	Kind        Kind      `json:"kind"`
	SourcePaths []string  `json:"source_paths"`
	TargetPath  string    `json:"target_path,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Undoable    bool      `json:"undoable"`
	Payload     Payload   `json:"payload"`
	Description string    `json:"description"`
}

// Describe derives the human-readable summary from the record itself.
func Describe(op *Operation) string {
	count := len(op.SourcePaths)
	first := ""
	if count > 0 {
		first = filepath.Base(op.SourcePaths[0])
	}

	switch op.Kind {
	case KindCopy:
		if count == 1 {
			return fmt.Sprintf("copy %s to %s", first, op.TargetPath)
		}
		return fmt.Sprintf("copy %d items to %s", count, op.TargetPath)
	case KindMove:
		if count == 1 {
			return fmt.Sprintf("move %s to %s", first, op.TargetPath)
		}
		return fmt.Sprintf("move %d items to %s", count, op.TargetPath)
	case KindDelete:
		suffix := ""
		if !op.Undoable {
			suffix = " permanently"
		}
		if count == 1 {
			return fmt.Sprintf("delete %s%s", first, suffix)
		}
		return fmt.Sprintf("delete %d items%s", count, suffix)
	case KindRename:
		return fmt.Sprintf("rename %s to %s", first, filepath.Base(op.TargetPath))
	case KindCreateFile:
		return fmt.Sprintf("create file %s", filepath.Base(op.TargetPath))
	case KindCreateDir:
		return fmt.Sprintf("create directory %s", filepath.Base(op.TargetPath))
	case KindDuplicate:
		return fmt.Sprintf("duplicate %s as %s", first, filepath.Base(op.TargetPath))
	default:
		return string(op.Kind)
	}
}
