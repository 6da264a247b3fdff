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

package naming

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// countersFile is the on-disk layout of the persisted counter cache.
type countersFile struct {
	Version  int                `json:"version"`
	Counters map[string]counter `json:"counters"`
}

// SaveCounters writes the counter cache to path so numbering stays monotonic
// across restarts.
func (s *Service) SaveCounters(path string) error {
	s.mu.Lock()
	file := countersFile{Version: 1, Counters: make(map[string]counter, len(s.counters))}
	for key, cnt := range s.counters {
		file.Counters[key] = *cnt
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling counters: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating counters directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Errorf("writing counters: %w", err)
	}
	return nil
}

// LoadCounters merges a persisted counter cache into the service. Loaded
// values seed the counters: they never lower a value already in memory. A
// missing file is not an error.
func (s *Service) LoadCounters(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Errorf("reading counters: %w", err)
	}

	var file countersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Errorf("unmarshaling counters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, cnt := range file.Counters {
		if err := s.seed(key, cnt); err != nil {
			return err
		}
	}
	return nil
}
