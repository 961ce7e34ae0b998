// SPDX-License-Identifier: MPL-2.0

// Package validate checks loaded configuration records.
//
// KeysValidator enforces required top-level keys and reports every missing
// key at once; it is the Default. SchemaValidator checks the record against
// an embedded CUE schema describing the fields "runcfg create" writes and is
// only used when asked for, through Strict. Chain runs several validators in
// order and stops at the first failure.
package validate
