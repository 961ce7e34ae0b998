// SPDX-License-Identifier: MPL-2.0

// Package record provides Record, a schema-less JSON object that keeps the
// insertion order of its keys, and the codec used to read and write
// training-run configuration files.
//
// Decoding streams the document through json-iterator so every nested object
// keeps the key order found on disk. Encoding writes keys in insertion order
// without escaping non-ASCII or HTML characters; MarshalIndent produces the
// four-space indented layout used for files written by runcfg.
package record
