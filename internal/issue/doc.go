// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for fixing it. Issue pages are Markdown documents rendered with
// glamour when the CLI runs with --verbose.
package issue
