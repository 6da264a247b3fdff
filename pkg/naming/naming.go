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

// Package naming generates collision-free numbered names for duplicated and
// pasted files. Counters are kept per (directory, base name) and only ever
// grow, so a name issued once is never issued again by the same service, even
// when the numbered file has since been deleted.
package naming

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/fsops/pkg/config"
	"github.com/walteh/fsops/pkg/fsio"
	"gitlab.com/tozd/go/errors"
)

// suffixPattern matches a trailing "_NNNNN" (five or more digits) suffix.
var suffixPattern = regexp.MustCompile(`^(.+)_(\d{5,})$`)

// counterKeySep joins directory and base name into one cache key. A unit
// separator cannot appear in a path component.
const counterKeySep = "\x1f"

// counter is the cached state for one (directory, base name) pair.
type counter struct {
	// Highest is the largest number ever issued for this base name
	Highest int `json:"highest"`

	// Width is the digit width in effect. Rollover widens it permanently.
	Width int `json:"width"`
}

// Service issues numbered names. Safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	cfg      config.NamingConfig
	counters map[string]*counter
}

// NewService creates a numbering service from a validated config section.
func NewService(cfg config.NamingConfig) *Service {
	return &Service{
		cfg:      cfg,
		counters: make(map[string]*counter),
	}
}

// ParseNumberedName splits path into its base name and trailing number. When
// no recognized numeric suffix is present it returns the filename without
// extension and zero.
func ParseNumberedName(path string) (string, int) {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	m := suffixPattern.FindStringSubmatch(stem)
	if m == nil {
		return stem, 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return stem, 0
	}
	return m[1], n
}

// GenerateNumberedName returns a path in the same directory as path whose name
// carries the next number for path's base name. The returned path is
// guaranteed not to exist at the time of the call, and its number is at least
// as large as any number previously issued for that base name.
func (s *Service) GenerateNumberedName(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	// A recognized suffix is stripped first, so re-duplicating a numbered
	// file continues the same sequence instead of nesting suffixes.
	base := stem
	parsedNumber, parsedWidth := 0, 0
	if m := suffixPattern.FindStringSubmatch(stem); m != nil {
		base = m[1]
		parsedNumber, _ = strconv.Atoi(m[2])
		parsedWidth = len(m[2])
	}

	key := dir + counterKeySep + base
	cnt, ok := s.counters[key]
	if !ok {
		cnt = &counter{
			Highest: s.scanHighest(ctx, dir, base, ext),
			Width:   s.cfg.DigitWidth,
		}
		s.counters[key] = cnt
	}
	if parsedNumber > cnt.Highest {
		cnt.Highest = parsedNumber
	}
	if parsedWidth > cnt.Width {
		cnt.Width = parsedWidth
	}

	next := cnt.Highest + 1
	if next < s.cfg.Start {
		next = s.cfg.Start
	}

	// Rollover: one extra digit beyond the width used so far, kept for the
	// lifetime of this base name.
	if next > s.cfg.RolloverThreshold && cnt.Width <= len(strconv.Itoa(s.cfg.RolloverThreshold)) {
		cnt.Width++
	}

	candidate := filepath.Join(dir, s.format(base, next, cnt.Width, ext))
	for fsio.Exists(candidate) {
		next++
		if next > s.cfg.RolloverThreshold && cnt.Width <= len(strconv.Itoa(s.cfg.RolloverThreshold)) {
			cnt.Width++
		}
		candidate = filepath.Join(dir, s.format(base, next, cnt.Width, ext))
	}

	cnt.Highest = next

	zerolog.Ctx(ctx).Debug().
		Str("base", base).
		Int("number", next).
		Str("name", filepath.Base(candidate)).
		Msg("issued numbered name")

	return candidate, nil
}

// scanHighest finds the largest number already present in dir for base. An
// unreadable directory is treated as empty; the collision loop in
// GenerateNumberedName still guarantees a free name.
func (s *Service) scanHighest(ctx context.Context, dir, base, ext string) int {
	names, err := fsio.ListNames(dir)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("directory scan failed, numbering from zero")
		return 0
	}

	highest := 0
	for _, n := range names {
		if filepath.Ext(n) != ext {
			continue
		}
		b, num := ParseNumberedName(n)
		if b == base && num > highest {
			highest = num
		}
	}
	return highest
}

// format renders the configured template for one numbered name.
func (s *Service) format(base string, number, width int, ext string) string {
	out := s.cfg.Template
	out = strings.ReplaceAll(out, "{name}", base)
	out = strings.ReplaceAll(out, "{number}", fmt.Sprintf("%0*d", width, number))
	out = strings.ReplaceAll(out, "{ext}", ext)
	return out
}

// Highest returns the highest number issued or observed for path's directory
// and base name, zero when the pair has never been seen.
func (s *Service) Highest(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if m := suffixPattern.FindStringSubmatch(base); m != nil {
		base = m[1]
	}

	if cnt, ok := s.counters[dir+counterKeySep+base]; ok {
		return cnt.Highest
	}
	return 0
}

// seed installs a counter value, used by persistence. Loaded values seed
// rather than reset: an existing higher counter wins.
func (s *Service) seed(key string, c counter) error {
	if !strings.Contains(key, counterKeySep) {
		return errors.Errorf("malformed counter key: %q", key)
	}
	cur, ok := s.counters[key]
	if !ok {
		clone := c
		s.counters[key] = &clone
		return nil
	}
	if c.Highest > cur.Highest {
		cur.Highest = c.Highest
	}
	if c.Width > cur.Width {
		cur.Width = c.Width
	}
	return nil
}
