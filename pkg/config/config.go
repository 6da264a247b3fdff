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

package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔢 NamingConfig controls collision numbering for copies and duplicates
type NamingConfig struct {
	// Template produces the numbered name. Placeholders: {name}, {number}, {ext}.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// DigitWidth is the zero-padded width of {number}
	DigitWidth int `json:"digit_width,omitempty" yaml:"digit_width,omitempty"`

	// Start is the first number issued for a fresh base name
	Start int `json:"start,omitempty" yaml:"start,omitempty"`

	// RolloverThreshold widens the digit width once exceeded
	RolloverThreshold int `json:"rollover_threshold,omitempty" yaml:"rollover_threshold,omitempty"`

	// CountersFile persists per-directory counters across runs (optional)
	CountersFile string `json:"counters_file,omitempty" yaml:"counters_file,omitempty"`
}

// 📚 HistoryConfig controls the undo/redo log
type HistoryConfig struct {
	// MaxSize bounds the undo stack; the oldest entry is evicted beyond it
	MaxSize int `json:"max_size,omitempty" yaml:"max_size,omitempty"`

	// MergeWindowMS merges consecutive renames recorded within this window.
	// Zero disables merging.
	MergeWindowMS int `json:"merge_window_ms,omitempty" yaml:"merge_window_ms,omitempty"`

	// SnapshotFile persists recent history across runs (optional)
	SnapshotFile string `json:"snapshot_file,omitempty" yaml:"snapshot_file,omitempty"`

	// SnapshotLimit bounds how many entries the snapshot keeps
	SnapshotLimit int `json:"snapshot_limit,omitempty" yaml:"snapshot_limit,omitempty"`
}

// 🗑️ TrashConfig controls where recoverable deletes are parked
type TrashConfig struct {
	// Dir is the trash root. Empty lets the caller pick a default.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// 📚 Config represents the complete engine configuration
type Config struct {
	Naming  NamingConfig  `json:"naming,omitempty" yaml:"naming,omitempty"`
	History HistoryConfig `json:"history,omitempty" yaml:"history,omitempty"`
	Trash   TrashConfig   `json:"trash,omitempty" yaml:"trash,omitempty"`
}

// Defaults applied by Validate.
const (
	DefaultTemplate          = "{name}_{number}{ext}"
	DefaultDigitWidth        = 5
	DefaultStart             = 1
	DefaultRolloverThreshold = 99999
	DefaultHistorySize       = 100
	DefaultSnapshotLimit     = 50
)

// 🏭 Default returns a validated configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Naming.Template == "" {
		cfg.Naming.Template = DefaultTemplate
	}
	if !strings.Contains(cfg.Naming.Template, "{name}") || !strings.Contains(cfg.Naming.Template, "{number}") {
		return errors.Errorf("naming.template must contain {name} and {number}: %q", cfg.Naming.Template)
	}
	if cfg.Naming.DigitWidth == 0 {
		cfg.Naming.DigitWidth = DefaultDigitWidth
	}
	if cfg.Naming.DigitWidth < 1 {
		return errors.Errorf("naming.digit_width must be positive: %d", cfg.Naming.DigitWidth)
	}
	if cfg.Naming.Start == 0 {
		cfg.Naming.Start = DefaultStart
	}
	if cfg.Naming.Start < 1 {
		return errors.Errorf("naming.start must be positive: %d", cfg.Naming.Start)
	}
	if cfg.Naming.RolloverThreshold == 0 {
		cfg.Naming.RolloverThreshold = DefaultRolloverThreshold
	}
	if cfg.Naming.RolloverThreshold < cfg.Naming.Start {
		return errors.Errorf("naming.rollover_threshold %d is below naming.start %d",
			cfg.Naming.RolloverThreshold, cfg.Naming.Start)
	}

	if cfg.History.MaxSize == 0 {
		cfg.History.MaxSize = DefaultHistorySize
	}
	if cfg.History.MaxSize < 1 {
		return errors.Errorf("history.max_size must be positive: %d", cfg.History.MaxSize)
	}
	if cfg.History.MergeWindowMS < 0 {
		return errors.Errorf("history.merge_window_ms must not be negative: %d", cfg.History.MergeWindowMS)
	}
	if cfg.History.SnapshotLimit == 0 {
		cfg.History.SnapshotLimit = DefaultSnapshotLimit
	}

	return nil
}

// MergeWindow returns the rename merge window as a duration.
func (cfg *Config) MergeWindow() time.Duration {
	return time.Duration(cfg.History.MergeWindowMS) * time.Millisecond
}

// 🔑 Hash returns a content hash of the configuration
func (cfg *Config) Hash() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("naming=%s width=%d history=%d",
		cfg.Naming.Template, cfg.Naming.DigitWidth, cfg.History.MaxSize)
}
