// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrTooLarge is wrapped by the error CheckFileSize returns.
var ErrTooLarge = errors.New("input too large")

type (
	// FieldError is one schema violation at a JSON-path location.
	// Path is empty when CUE could not attribute the error to a field.
	FieldError struct {
		Path    string
		Message string
	}

	// Error is a validation failure for one file. Callers use Fields to
	// tell the user which keys to fix.
	Error struct {
		File   string
		Fields []FieldError
		err    error
	}
)

// FormatError converts a CUE error into an *Error whose fields carry
// JSON-path locations such as "python.packages[0]". A non-CUE error becomes
// an *Error with a single unattributed field. A nil err returns nil.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}
	out := &Error{File: filePath, err: err}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		out.Fields = []FieldError{{Message: err.Error()}}
		return out
	}
	for _, e := range list {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		// CUE repeats the path at the start of some messages.
		if path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
		}
		out.Fields = append(out.Fields, FieldError{Path: path, Message: msg})
	}
	return out
}

// Error renders "<file>: <path>: <message>", or a multi-line list when
// there is more than one field.
func (e *Error) Error() string {
	lines := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		lines = append(lines, f.String())
	}
	if len(lines) == 1 {
		return e.File + ": " + lines[0]
	}
	return e.File + ": validation failed:\n  " + strings.Join(lines, "\n  ")
}

// Unwrap returns the underlying CUE error.
func (e *Error) Unwrap() error { return e.err }

// Paths returns the distinct non-empty field paths in the order reported.
func (e *Error) Paths() []string {
	var paths []string
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if f.Path == "" || seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		paths = append(paths, f.Path)
	}
	return paths
}

// TopLevelKeys returns the distinct first segments of Paths, e.g.
// "repository" for "repository.commit_version".
func (e *Error) TopLevelKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, p := range e.Paths() {
		key, _, _ := strings.Cut(p, ".")
		key, _, _ = strings.Cut(key, "[")
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

func (f FieldError) String() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Path + ": " + f.Message
}

// formatPath joins CUE path elements in JSON-path notation. Numeric
// elements after the first are list indices.
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// CheckFileSize fails with ErrTooLarge when data exceeds maxSize.
// A maxSize of zero or less disables the check.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if maxSize <= 0 || int64(len(data)) <= maxSize {
		return nil
	}
	return fmt.Errorf("%s: %w: %d bytes exceeds maximum %d bytes", filename, ErrTooLarge, len(data), maxSize)
}
