// SPDX-License-Identifier: MPL-2.0

package record

import (
	"bytes"
	"maps"
	"slices"

	"github.com/runcfg/runcfg/pkg/types"
)

// Record is a JSON object that remembers key insertion order.
//
// Values are one of: nil, bool, string, json.Number, any Go integer or float
// kind, types.FilesystemPath, *Record, []any (and, for convenience when
// building records in code, []string and map[string]any). Decoding only ever
// produces nil, bool, string, json.Number, *Record and []any.
//
// The zero value is not usable; create records with New.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty Record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// FromMap builds a Record from m with keys in sorted order, since Go maps
// carry no order of their own. Nested map[string]any values are converted
// too.
func FromMap(m map[string]any) *Record {
	r := New()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v := m[k]
		if nested, ok := v.(map[string]any); ok {
			v = FromMap(nested)
		}
		r.Set(k, v)
	}
	return r
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and has its value replaced wholesale. Set returns r so literal
// records can be built by chaining.
func (r *Record) Set(key string, v any) *Record {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
	return r
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// GetRecord returns the nested record stored under key, if any.
func (r *Record) GetRecord(key string) (*Record, bool) {
	v, ok := r.values[key].(*Record)
	return v, ok && v != nil
}

// GetString returns the string stored under key. FilesystemPath values count
// as strings.
func (r *Record) GetString(key string) (string, bool) {
	switch v := r.values[key].(type) {
	case string:
		return v, true
	case types.FilesystemPath:
		return string(v), true
	default:
		return "", false
	}
}

// Delete removes key and reports whether it was present.
func (r *Record) Delete(key string) bool {
	if _, ok := r.values[key]; !ok {
		return false
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
	return true
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return len(r.keys)
}

// Clone returns a deep copy of r. Nested records and sequences are copied;
// scalar values are shared.
func (r *Record) Clone() *Record {
	out := New()
	for _, k := range r.keys {
		out.Set(k, cloneValue(r.values[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case *Record:
		if vv == nil {
			return vv
		}
		return vv.Clone()
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(vv)
	default:
		return v
	}
}

// NormalizePaths replaces every types.FilesystemPath value reachable from r,
// through nested records and sequences at any depth, with a plain string.
// The record is modified in place.
func (r *Record) NormalizePaths() {
	for _, k := range r.keys {
		r.values[k] = normalizeValue(r.values[k])
	}
}

func normalizeValue(v any) any {
	switch vv := v.(type) {
	case types.FilesystemPath:
		return string(vv)
	case *Record:
		if vv != nil {
			vv.NormalizePaths()
		}
		return vv
	case []any:
		for i, item := range vv {
			vv[i] = normalizeValue(item)
		}
		return vv
	case []types.FilesystemPath:
		out := make([]any, len(vv))
		for i, p := range vv {
			out[i] = string(p)
		}
		return out
	case map[string]any:
		for k, item := range vv {
			vv[k] = normalizeValue(item)
		}
		return vv
	default:
		return v
	}
}

// Map converts r into plain Go maps and slices, dropping key order. It is
// meant for handing a record to libraries that only understand map[string]any.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		out[k] = plainValue(r.values[k])
	}
	return out
}

func plainValue(v any) any {
	switch vv := v.(type) {
	case *Record:
		if vv == nil {
			return nil
		}
		return vv.Map()
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = plainValue(item)
		}
		return out
	case types.FilesystemPath:
		return string(vv)
	default:
		return v
	}
}

// Equal reports whether r and other encode to the same JSON document,
// including key order. A FilesystemPath equals the string it holds, and
// json.Number("5") equals the int 5.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	a, errA := r.MarshalJSON()
	b, errB := other.MarshalJSON()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}
