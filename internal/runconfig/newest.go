// SPDX-License-Identifier: MPL-2.0

package runconfig

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/runcfg/runcfg/internal/fsmeta"
	"github.com/runcfg/runcfg/pkg/fspath"
	"github.com/runcfg/runcfg/pkg/types"
)

const (
	// SearchModeFilename picks the file whose name carries the greatest
	// embedded timestamp.
	SearchModeFilename SearchMode = "filename"
	// SearchModeCreated picks the file with the greatest creation time.
	// Every mode other than SearchModeFilename behaves like this one.
	SearchModeCreated SearchMode = "created"
)

type (
	// SearchMode selects how NewestPath ranks candidate files.
	SearchMode string

	// NotFoundError is returned when a directory to search does not exist.
	// It wraps the underlying fs.ErrNotExist error.
	NotFoundError struct {
		Path types.FilesystemPath
		Err  error
	}

	// Entry describes one configuration file in a directory.
	Entry struct {
		Path types.FilesystemPath
		// Timestamp is the timestamp embedded in the file name, or empty
		// when the name does not carry one.
		Timestamp types.Timestamp
		Created   fsmeta.Stamp
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration directory %s does not exist", e.Path)
}

// Unwrap returns the underlying filesystem error.
func (e *NotFoundError) Unwrap() error { return e.Err }

// NewestPath returns the newest *.json file directly inside dir.
//
// With SearchModeFilename the text after the last '_' of each file name is
// compared and the first file, in name order, ending with the greatest such
// suffix wins. With any other mode the greatest creation time wins, falling
// back to modification time where the platform has no creation time; on a
// tie the first file in name order is kept.
//
// The boolean is false, with a nil error, when dir holds no *.json files.
func (m *Manager) NewestPath(dir types.FilesystemPath, mode SearchMode) (types.FilesystemPath, bool, error) {
	names, err := jsonFiles(dir)
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		m.logger.Debug("no configuration files", "dir", dir)
		return "", false, nil
	}

	var newest string
	if mode == SearchModeFilename {
		newest = newestByName(names)
	} else {
		newest, err = m.newestByCreation(dir, names)
		if err != nil {
			return "", false, err
		}
	}

	path := fspath.JoinStr(dir, newest)
	m.logger.Debug("found newest configuration", "path", path, "mode", mode, "candidates", len(names))
	return path, true, nil
}

// List returns every *.json file directly inside dir, newest first. Files
// with an embedded timestamp are ordered by it; the others by creation time.
func (m *Manager) List(dir types.FilesystemPath) ([]Entry, error) {
	names, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		path := fspath.JoinStr(dir, name)
		stamp, err := m.creationTime(string(path))
		if err != nil {
			return nil, err
		}
		e := Entry{Path: path, Created: stamp}
		if ts, err := TimestampFromPath(path); err == nil {
			e.Timestamp = ts
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.sortTime().UnixNano(), a.sortTime().UnixNano())
	})
	return entries, nil
}

func (e Entry) sortTime() time.Time {
	if e.Timestamp != "" {
		if t, err := e.Timestamp.Time(); err == nil {
			return t
		}
	}
	return e.Created.Time
}

// TimestampFromPath extracts the timestamp embedded in a file name written
// by Create, e.g. "run_2024-06-01-12-00-00-000001.json".
func TimestampFromPath(path types.FilesystemPath) (types.Timestamp, error) {
	suffix := strings.TrimSuffix(nameSuffix(fspath.Base(path)), jsonExt)
	if _, err := types.ParseTimestamp(suffix); err != nil {
		return "", err
	}
	return types.Timestamp(suffix), nil
}

// jsonFiles lists the names of *.json entries in dir in lexical order.
func jsonFiles(dir types.FilesystemPath) ([]string, error) {
	if err := dir.Validate(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: dir, Err: err}
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), jsonExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}

// nameSuffix returns the part of name after its last '_', or name itself.
func nameSuffix(name string) string {
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// newestByName returns the first of names ending with the greatest suffix.
// That is not always the file the suffix came from: for a_15.json and
// b_5.json the greatest suffix is "5.json" and a_15.json is returned.
// names must not be empty.
func newestByName(names []string) string {
	greatest := nameSuffix(names[0])
	for _, name := range names[1:] {
		greatest = max(greatest, nameSuffix(name))
	}
	// Always found: greatest came from one of names.
	i := slices.IndexFunc(names, func(name string) bool {
		return strings.HasSuffix(name, greatest)
	})
	return names[i]
}

func (m *Manager) newestByCreation(dir types.FilesystemPath, names []string) (string, error) {
	var (
		newest string
		best   time.Time
	)
	for _, name := range names {
		stamp, err := m.creationTime(string(fspath.JoinStr(dir, name)))
		if err != nil {
			return "", err
		}
		if newest == "" || stamp.Time.After(best) {
			newest, best = name, stamp.Time
		}
	}
	return newest, nil
}
