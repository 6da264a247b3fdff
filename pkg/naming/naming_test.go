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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fsops/pkg/config"
)

func testService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return NewService(config.Default().Naming), logger.WithContext(context.Background())
}

func TestGenerateNumberedName(t *testing.T) {
	svc, ctx := testService(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "document.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))

	first, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "document_00001.txt"), first, "first duplicate")

	// The service does not create files itself; simulate the caller copying.
	require.NoError(t, os.WriteFile(first, []byte("x"), 0644))

	second, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "document_00002.txt"), second, "second duplicate")
}

func TestGenerateSkipsExistingNumbers(t *testing.T) {
	svc, ctx := testService(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note_00003.txt"), []byte("x"), 0644))

	name, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "note_00004.txt"), name,
		"directory scan should seed from the highest existing number")
	assert.False(t, fileExists(name), "generated name must not collide")
}

func TestGenerateFromNumberedFileContinuesSequence(t *testing.T) {
	svc, ctx := testService(t)
	dir := t.TempDir()
	numbered := filepath.Join(dir, "doc_00005.txt")
	require.NoError(t, os.WriteFile(numbered, []byte("x"), 0644))

	name, err := svc.GenerateNumberedName(ctx, numbered)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "doc_00006.txt"), name,
		"recognized suffixes are stripped, not nested")
}

func TestGenerateMonotonicAfterDelete(t *testing.T) {
	svc, ctx := testService(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))

	first, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(first, []byte("x"), 0644))
	require.NoError(t, os.Remove(first))

	second, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	assert.Greater(t, second, first, "numbers never decrease even after deletion")
}

func TestRolloverWidensDigits(t *testing.T) {
	svc, ctx := testService(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))

	require.NoError(t, svc.seed(dir+counterKeySep+"doc", counter{Highest: 99999, Width: 5}))

	name, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	base, n := ParseNumberedName(name)
	assert.Equal(t, "doc", base)
	assert.Equal(t, 100000, n, "numbering stays monotonic through rollover")
	assert.Equal(t, filepath.Join(dir, "doc_100000.txt"), name, "suffix widens to six digits")
}

func TestUnreadableDirectoryDoesNotFail(t *testing.T) {
	svc, ctx := testService(t)
	dir := t.TempDir()

	// The directory does not exist at all; the scan logs and starts at zero.
	name, err := svc.GenerateNumberedName(ctx, filepath.Join(dir, "ghost", "doc.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ghost", "doc_00001.txt"), name)
}

func TestCustomTemplate(t *testing.T) {
	cfg := config.Default().Naming
	cfg.Template = "{name} ({number}){ext}"
	cfg.DigitWidth = 1
	svc := NewService(cfg)
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	dir := t.TempDir()
	doc := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))

	name, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo (1).jpg"), name)
}

func TestParseNumberedName(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantBase string
		wantNum  int
	}{
		{name: "plain", path: "document.txt", wantBase: "document", wantNum: 0},
		{name: "numbered", path: "document_00042.txt", wantBase: "document", wantNum: 42},
		{name: "short_suffix_not_recognized", path: "doc_001.txt", wantBase: "doc_001", wantNum: 0},
		{name: "six_digits", path: "doc_100000.txt", wantBase: "doc", wantNum: 100000},
		{name: "no_extension", path: "backup_00007", wantBase: "backup", wantNum: 7},
		{name: "underscore_in_base", path: "my_notes_00002.md", wantBase: "my_notes", wantNum: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, num := ParseNumberedName(tt.path)
			assert.Equal(t, tt.wantBase, base, "base name")
			assert.Equal(t, tt.wantNum, num, "number")
		})
	}
}

func TestCountersPersistence(t *testing.T) {
	svc, ctx := testService(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))

	first, err := svc.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_00001.txt"), first)

	countersPath := filepath.Join(t.TempDir(), "counters.json")
	require.NoError(t, svc.SaveCounters(countersPath))

	// A fresh service with the counters reloaded continues the sequence,
	// even though report_00001.txt was never created on disk.
	fresh := NewService(config.Default().Naming)
	require.NoError(t, fresh.LoadCounters(countersPath))

	second, err := fresh.GenerateNumberedName(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_00002.txt"), second,
		"persisted counters seed, never reset")
}

func TestLoadCountersMissingFile(t *testing.T) {
	svc, _ := testService(t)
	require.NoError(t, svc.LoadCounters(filepath.Join(t.TempDir(), "none.json")),
		"missing counters file starts fresh")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
