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

package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/fsops/pkg/engine"
)

// 🎨 Display configuration
const (
	rowIndent = 4  // spaces to indent result rows
	nameWidth = 35 // base width for the path column
	kindWidth = 18 // width for the operation kind
)

// 📢 UserLogger prints user-facing feedback for every engine operation, and
// mirrors it into zerolog for debugging.
type UserLogger struct {
	log zerolog.Logger
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 👀 Observe returns an engine observer that narrates operation lifecycle
// events as they happen.
func (u *UserLogger) Observe() engine.Observer {
	return func(ev engine.Event) {
		switch ev.Type {
		case engine.EventStarted:
			u.log.Debug().
				Str("kind", string(ev.Kind)).
				Int("sources", len(ev.Sources)).
				Msg("operation started")
		case engine.EventProgress:
			u.log.Debug().
				Str("kind", string(ev.Kind)).
				Int("done", ev.Done).
				Int("total", ev.Total).
				Msg("operation progress")
		case engine.EventCompleted:
			u.log.Info().Str("kind", string(ev.Kind)).Msg("operation completed")
		case engine.EventFailed:
			u.log.Warn().Str("kind", string(ev.Kind)).Msg("operation failed")
		}
	}
}

// 📝 LogResult prints the outcome of one operation: each produced path, each
// per-item failure, and each warning.
func (u *UserLogger) LogResult(kind string, res engine.Result) {
	for _, path := range res.ResultPaths {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"}).Println(FormatResultRow(path, kind, "ok"))
		u.log.Info().Str("path", path).Str("kind", kind).Msg("done")
	}
	for _, warning := range res.Warnings {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(warning)
		u.log.Warn().Msg(warning)
	}
	for _, itemErr := range res.Errors {
		name := itemErr.Path
		if name == "" {
			name = "-"
		}
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(FormatResultRow(filepath.Base(name), kind, "failed"))
		pterm.Error.Println(itemErr.Err)
		u.log.Error().Err(itemErr.Err).Str("path", itemErr.Path).Msg("item failed")
	}
}

// 🔍 LogValidation logs setup results before any operation runs
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Msg(description)
	} else {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
		u.log.Warn().Msg(description)
	}
}

// 📊 LogHistory prints recent history entries, newest first
func (u *UserLogger) LogHistory(descriptions []string) {
	if len(descriptions) == 0 {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "📭"}).Println("history is empty")
		return
	}
	for i, description := range descriptions {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "🕘"}).Printf("%2d. %s\n", i+1, description)
	}
}

// 🎯 FormatResultRow formats one result row for display
func FormatResultRow(path, kind, status string) string {
	var prefix string
	switch status {
	case "ok":
		prefix = color.GreenString("✓")
	case "failed":
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	kindPart := fmt.Sprintf("%-*s", kindWidth, kind)

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", rowIndent),
		prefix,
		namePart,
		kindPart,
		status,
	)
}
