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

package opts

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/fsops/cmd/fsops/ui"
	"github.com/walteh/fsops/pkg/config"
	"github.com/walteh/fsops/pkg/drop"
	"github.com/walteh/fsops/pkg/engine"
	"github.com/walteh/fsops/pkg/naming"
)

// RootOpts carries the shared dependencies every command needs
type RootOpts struct {
	Config     *config.Config
	Engine     *engine.Engine
	Resolver   *drop.Resolver
	Naming     *naming.Service
	UserLogger *ui.UserLogger
}

// Persist saves the numbering counters and the history snapshot, when the
// configuration asks for either. Commands call this after mutating anything.
func (o *RootOpts) Persist(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	if path := o.Config.Naming.CountersFile; path != "" {
		if err := o.Naming.SaveCounters(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("saving numbering counters")
		}
	}
	if path := o.Config.History.SnapshotFile; path != "" {
		if err := o.Engine.History().Save(path, o.Config.History.SnapshotLimit); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("saving history snapshot")
		}
	}
}
