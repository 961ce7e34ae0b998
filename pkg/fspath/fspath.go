// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so configuration paths stay typed
// from the CLI down to the record they end up in.
package fspath

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/runcfg/runcfg/pkg/types"
)

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments (e.g. names returned by os.ReadDir).
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Base wraps filepath.Base for FilesystemPath.
func Base(p types.FilesystemPath) string {
	return filepath.Base(string(p))
}

// Abs wraps filepath.Abs for FilesystemPath.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// TrimExt removes ext from the end of p when present. Unlike
// strings.ReplaceAll it leaves an ext occurring mid-path untouched.
func TrimExt(p types.FilesystemPath, ext string) types.FilesystemPath {
	return types.FilesystemPath(strings.TrimSuffix(string(p), ext))
}

// Ancestor returns the directory n levels above p. Ancestor(p, 0) is p
// itself, cleaned. Climbing past the filesystem root stays at the root.
func Ancestor(p types.FilesystemPath, n int) types.FilesystemPath {
	cur := filepath.Clean(string(p))
	for range n {
		cur = filepath.Dir(cur)
	}
	return types.FilesystemPath(cur)
}
