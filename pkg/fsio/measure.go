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

package fsio

import (
	"context"
	"io/fs"
	"os"
	"sync/atomic"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Totals summarizes a set of paths before an operation runs, so progress
// reporting can announce how much work is ahead.
type Totals struct {
	Files int64
	Dirs  int64
	Bytes int64
}

// Measure walks the given paths concurrently and sums their entry counts and
// byte sizes. Unreadable entries are skipped rather than failing the whole
// measurement.
func Measure(ctx context.Context, paths []string) (Totals, error) {
	var totals Totals

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			info, err := os.Lstat(path)
			if err != nil {
				return nil // skip unreadable roots
			}
			if !info.IsDir() {
				atomic.AddInt64(&totals.Files, 1)
				atomic.AddInt64(&totals.Bytes, info.Size())
				return nil
			}
			atomic.AddInt64(&totals.Dirs, 1)
			return Walk(gctx, path, func(child string, entry fs.DirEntry) error {
				if child == path {
					return nil
				}
				if entry.IsDir() {
					atomic.AddInt64(&totals.Dirs, 1)
					return nil
				}
				atomic.AddInt64(&totals.Files, 1)
				if fi, err := entry.Info(); err == nil {
					atomic.AddInt64(&totals.Bytes, fi.Size())
				}
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return totals, err
		}
		// Walk errors are informational; the totals collected so far stand.
		return totals, nil
	}
	return totals, nil
}
