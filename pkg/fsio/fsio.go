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

// Package fsio is the filesystem access layer of the mutation engine. It
// provides the raw primitives (stat, list, copy, move, remove, create) that
// the engine composes into validated, undoable operations. Cancellation is
// cooperative: recursive walks check the context between entries, never
// mid-file.
package fsio

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"gitlab.com/tozd/go/errors"
)

// Exists reports whether path names an existing entry (any type).
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListNames returns the entry names of dir.
func ListNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// CopyFile copies a regular file, preserving mode and modification time.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("stating %s: %w", src, err)
	}
	if info.IsDir() {
		return errors.Errorf("copying %s: is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return errors.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing %s: %w", dst, err)
	}

	// Best effort: the target filesystem may not support it.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	return nil
}

// CopyTree recursively copies src (file or directory) to dst. The context is
// checked before each entry.
func CopyTree(ctx context.Context, src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Errorf("stating %s: %w", src, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return errors.Errorf("reading link %s: %w", src, err)
		}
		if err := os.Symlink(target, dst); err != nil {
			return errors.Errorf("linking %s: %w", dst, err)
		}
		return nil
	}

	if !info.IsDir() {
		return CopyFile(ctx, src, dst)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", src, err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := CopyTree(ctx, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	return nil
}

// Move renames src to dst, falling back to copy+remove when the rename
// crosses devices. It reports whether the fallback was taken.
func Move(ctx context.Context, src, dst string) (crossedDevice bool, err error) {
	if err := os.Rename(src, dst); err == nil {
		return false, nil
	} else if !errors.Is(err, syscall.EXDEV) {
		return false, errors.Errorf("moving %s: %w", src, err)
	}

	if err := CopyTree(ctx, src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return true, err
	}
	if err := os.RemoveAll(src); err != nil {
		return true, errors.Errorf("removing %s after cross-device move: %w", src, err)
	}
	return true, nil
}

// Remove permanently removes path, recursively for directories.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// CreateFile creates an empty file, failing if path already exists.
func CreateFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.Errorf("creating %s: %w", path, err)
	}
	return f.Close()
}

// CreateDir creates a directory, failing if path already exists.
func CreateDir(path string) error {
	if err := os.Mkdir(path, 0755); err != nil {
		return errors.Errorf("creating %s: %w", path, err)
	}
	return nil
}

// Symlink creates a symbolic link at dst pointing to src.
func Symlink(src, dst string) error {
	if err := os.Symlink(src, dst); err != nil {
		return errors.Errorf("linking %s: %w", dst, err)
	}
	return nil
}

// Walk visits every entry under root, checking ctx between entries.
func Walk(ctx context.Context, root string, fn func(path string, entry fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			return err
		}
		return fn(path, entry)
	})
}
