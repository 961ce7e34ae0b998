// SPDX-License-Identifier: MPL-2.0

// Package fsmeta answers "when was this file created?" on every platform.
//
// Where the host records a birth time (statx on Linux, st_birthtime on the
// BSDs and macOS, CreationTime on Windows) that value is used. Otherwise the
// last content modification time stands in for it.
package fsmeta

import (
	"fmt"
	"os"
	"time"
)

// Source identifies which timestamp CreationTime returned.
type Source string

const (
	// SourceBirthTime means the filesystem reported a true creation time.
	SourceBirthTime Source = "birthtime"
	// SourceModTime means creation time was unavailable and the last
	// modification time was used instead.
	SourceModTime Source = "mtime"
)

// Stamp is a file timestamp together with where it came from.
type Stamp struct {
	Time   time.Time
	Source Source
}

// CreationTime returns the creation time of path, falling back to its
// modification time when the platform or filesystem does not record one.
func CreationTime(path string) (Stamp, error) {
	if t, ok := birthTime(path); ok {
		return Stamp{Time: t, Source: SourceBirthTime}, nil
	}
	return modTime(path)
}

func modTime(path string) (Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stamp{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Stamp{Time: info.ModTime(), Source: SourceModTime}, nil
}
