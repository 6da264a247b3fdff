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
	"io/fs"
	"os"
	"syscall"

	"gitlab.com/tozd/go/errors"
)

// Error taxonomy of the engine. Callers match with errors.Is; every wrapped
// error carries the originating source path.
var (
	ErrNotFound             = errors.Base("not found")
	ErrPermissionDenied     = errors.Base("permission denied")
	ErrNameConflict         = errors.Base("name conflict")
	ErrInUse                = errors.Base("in use")
	ErrCrossDevice          = errors.Base("cross-device operation failed")
	ErrEmptyClipboard       = errors.Base("clipboard is empty")
	ErrCancelled            = errors.Base("operation cancelled")
	ErrConfirmationRequired = errors.Base("confirmation required")
	ErrUndoConflict         = errors.Base("state diverged since the operation")
	ErrSelfTarget           = errors.Base("target is inside the source")
)

// classify wraps a low-level error with the matching taxonomy sentinel and
// the path it concerns. Unrecognized errors pass through wrapped with the
// path only; they are surfaced, never swallowed.
func classify(err error, path string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return errors.Errorf("%s: %w", path, ErrCancelled)
	case os.IsNotExist(err) || errors.Is(err, fs.ErrNotExist):
		return errors.Errorf("%s: %w", path, ErrNotFound)
	case os.IsPermission(err) || errors.Is(err, fs.ErrPermission):
		return errors.Errorf("%s: %w", path, ErrPermissionDenied)
	case errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ETXTBSY):
		return errors.Errorf("%s: %w", path, ErrInUse)
	case errors.Is(err, syscall.EXDEV):
		return errors.Errorf("%s: %w", path, ErrCrossDevice)
	default:
		return errors.Errorf("%s: %w", path, err)
	}
}
