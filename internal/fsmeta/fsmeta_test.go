// SPDX-License-Identifier: MPL-2.0

package fsmeta

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreationTime_ExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	before := time.Now().Add(-time.Minute)
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	stamp, err := CreationTime(path)
	if err != nil {
		t.Fatalf("CreationTime() error = %v", err)
	}
	if stamp.Source != SourceBirthTime && stamp.Source != SourceModTime {
		t.Errorf("Source = %q, want birthtime or mtime", stamp.Source)
	}
	if stamp.Time.Before(before) {
		t.Errorf("Time = %v, want after %v", stamp.Time, before)
	}
}

func TestCreationTime_FallsBackToModTime(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set times: %v", err)
	}

	stamp, err := modTime(path)
	if err != nil {
		t.Fatalf("modTime() error = %v", err)
	}
	if stamp.Source != SourceModTime {
		t.Errorf("Source = %q, want %q", stamp.Source, SourceModTime)
	}
	if !stamp.Time.Equal(mtime) {
		t.Errorf("Time = %v, want %v", stamp.Time, mtime)
	}
}

func TestCreationTime_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := CreationTime(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("CreationTime() error = %v, want fs.ErrNotExist", err)
	}
}
