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

// Package clipboard holds the pending copy/cut selection. It is purely a
// selection buffer; the engine's paste operation consumes it and touches the
// filesystem.
package clipboard

import (
	"sort"
	"sync"
)

// Mode is the clipboard mode.
type Mode string

const (
	ModeEmpty Mode = "empty"
	ModeCopy  Mode = "copy"
	ModeCut   Mode = "cut"
)

// State is the clipboard buffer. Safe for concurrent use. Each Set replaces
// the previous selection wholesale.
type State struct {
	mu    sync.Mutex
	mode  Mode
	paths map[string]struct{}
}

// New returns an empty clipboard.
func New() *State {
	return &State{mode: ModeEmpty, paths: make(map[string]struct{})}
}

// Set replaces the selection. cut selects move semantics on paste.
func (s *State) Set(paths []string, cut bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paths = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p != "" {
			s.paths[p] = struct{}{}
		}
	}
	if len(s.paths) == 0 {
		s.mode = ModeEmpty
		return
	}
	if cut {
		s.mode = ModeCut
	} else {
		s.mode = ModeCopy
	}
}

// Contents returns the mode and a sorted copy of the selected paths.
func (s *State) Contents() (Mode, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return s.mode, paths
}

// Clear empties the clipboard.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeEmpty
	s.paths = make(map[string]struct{})
}
