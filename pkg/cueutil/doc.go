// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates data against embedded CUE schemas.
//
// Both runcfg's settings file and the training-run records it manages are
// checked the same way:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile the data (CUE, or JSON since CUE is a superset) and unify
//  3. Validate, optionally decoding into a Go value
//
// Validation failures are *Error values carrying the file name and one
// FieldError per violation with a JSON-path style location, e.g.
// "config.cue: environment.interpreter: conflicting values 1 and string".
package cueutil
