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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Naming *struct {
			Template          string `hcl:"template,optional"`
			DigitWidth        int    `hcl:"digit_width,optional"`
			Start             int    `hcl:"start,optional"`
			RolloverThreshold int    `hcl:"rollover_threshold,optional"`
			CountersFile      string `hcl:"counters_file,optional"`
		} `hcl:"naming,block"`
		History *struct {
			MaxSize       int    `hcl:"max_size,optional"`
			MergeWindowMS int    `hcl:"merge_window_ms,optional"`
			SnapshotFile  string `hcl:"snapshot_file,optional"`
			SnapshotLimit int    `hcl:"snapshot_limit,optional"`
		} `hcl:"history,block"`
		Trash *struct {
			Dir string `hcl:"dir,optional"`
		} `hcl:"trash,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	var cfg Config
	if hclCfg.Naming != nil {
		cfg.Naming = NamingConfig{
			Template:          hclCfg.Naming.Template,
			DigitWidth:        hclCfg.Naming.DigitWidth,
			Start:             hclCfg.Naming.Start,
			RolloverThreshold: hclCfg.Naming.RolloverThreshold,
			CountersFile:      hclCfg.Naming.CountersFile,
		}
	}
	if hclCfg.History != nil {
		cfg.History = HistoryConfig{
			MaxSize:       hclCfg.History.MaxSize,
			MergeWindowMS: hclCfg.History.MergeWindowMS,
			SnapshotFile:  hclCfg.History.SnapshotFile,
			SnapshotLimit: hclCfg.History.SnapshotLimit,
		}
	}
	if hclCfg.Trash != nil {
		cfg.Trash = TrashConfig{Dir: hclCfg.Trash.Dir}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
