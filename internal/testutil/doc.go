// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by the runcfg test suites: a
// controllable clock and Must* wrappers for filesystem and environment setup
// that fail the test instead of returning errors.
package testutil
