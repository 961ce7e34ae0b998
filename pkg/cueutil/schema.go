// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Unify compiles data, unifies it with the definition at defPath in schema
// and validates the result. The returned value is the unified value.
func Unify(schema string, data []byte, defPath string, opts ...Option) (cue.Value, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	filename := o.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, o.maxFileSize, filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	root := schemaValue.LookupPath(cue.ParsePath(defPath))
	if root.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", defPath, root.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), filename)
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return cue.Value{}, FormatError(err, filename)
	}
	return unified, nil
}

// Decode is Unify followed by decoding the unified value into a T.
func Decode[T any](schema string, data []byte, defPath string, opts ...Option) (T, error) {
	var result T
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	unified, err := Unify(schema, data, defPath, opts...)
	if err != nil {
		return result, err
	}
	if err := unified.Decode(&result); err != nil {
		filename := o.filename
		if filename == "" {
			filename = "<input>"
		}
		return result, FormatError(err, filename)
	}
	return result, nil
}
