// SPDX-License-Identifier: MPL-2.0

package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/runcfg/runcfg/pkg/types"
)

// DefaultIndent is the indentation used for configuration files on disk.
const DefaultIndent = "    "

var (
	// ErrNotObject is returned when a JSON document's top-level value is not
	// an object.
	ErrNotObject = errors.New("top-level JSON value is not an object")

	// ErrSyntax is returned for malformed JSON.
	ErrSyntax = errors.New("malformed JSON")

	// ErrUnsupportedValue is returned when a record holds a value that has no
	// JSON representation.
	ErrUnsupportedValue = errors.New("unsupported record value")
)

// NotObjectError reports the JSON kind found where an object was required.
type NotObjectError struct {
	Kind string
}

// Error implements the error interface.
func (e *NotObjectError) Error() string {
	return fmt.Sprintf("configuration must be a JSON object, got %s", e.Kind)
}

// Unwrap returns ErrNotObject for errors.Is() compatibility.
func (e *NotObjectError) Unwrap() error { return ErrNotObject }

// Parse decodes data into a Record, keeping the key order of every object in
// the document. Numbers are kept as json.Number so their literal text
// survives a round trip.
func Parse(data []byte) (*Record, error) {
	v, kind, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(*Record)
	if !ok {
		return nil, &NotObjectError{Kind: kind}
	}
	return rec, nil
}

// ParseValue decodes a single JSON value of any kind. Objects become
// *Record values with their key order kept.
func ParseValue(data []byte) (any, error) {
	v, _, err := parseDocument(data)
	return v, err
}

func parseDocument(data []byte) (any, string, error) {
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)

	kind := kindOf(iter.WhatIsNext())
	if kind == "" {
		return nil, "", syntaxError(iter, "expected a JSON value")
	}
	v, err := decodeValue(iter)
	if err != nil {
		return nil, "", err
	}
	if iter.WhatIsNext() != jsoniter.InvalidValue || !errors.Is(iter.Error, io.EOF) {
		return nil, "", syntaxError(iter, "unexpected data after top-level value")
	}
	return v, kind, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

func kindOf(t jsoniter.ValueType) string {
	switch t {
	case jsoniter.ObjectValue:
		return "object"
	case jsoniter.ArrayValue:
		return "array"
	case jsoniter.StringValue:
		return "string"
	case jsoniter.NumberValue:
		return "number"
	case jsoniter.BoolValue:
		return "boolean"
	case jsoniter.NilValue:
		return "null"
	default:
		return ""
	}
}

func decodeValue(iter *jsoniter.Iterator) (any, error) {
	var v any
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		rec := New()
		var inner error
		iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
			fv, err := decodeValue(it)
			if err != nil {
				inner = err
				return false
			}
			rec.Set(field, fv)
			return true
		})
		if inner != nil {
			return nil, inner
		}
		v = rec
	case jsoniter.ArrayValue:
		items := []any{}
		var inner error
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			item, err := decodeValue(it)
			if err != nil {
				inner = err
				return false
			}
			items = append(items, item)
			return true
		})
		if inner != nil {
			return nil, inner
		}
		v = items
	case jsoniter.StringValue:
		v = iter.ReadString()
	case jsoniter.NumberValue:
		// ReadNumber accepts any run of number characters, e.g. "1.2.3".
		n := iter.ReadNumber()
		if iter.Error == nil || errors.Is(iter.Error, io.EOF) {
			if !isNumberLiteral(n) {
				return nil, fmt.Errorf("%w: invalid number %q", ErrSyntax, string(n))
			}
		}
		v = n
	case jsoniter.BoolValue:
		v = iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
	default:
		return nil, syntaxError(iter, "expected a JSON value")
	}
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, syntaxError(iter, "")
	}
	return v, nil
}

func syntaxError(iter *jsoniter.Iterator, msg string) error {
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return fmt.Errorf("%w: %v", ErrSyntax, iter.Error)
	}
	return fmt.Errorf("%w: %s", ErrSyntax, msg)
}

// MarshalJSON implements json.Marshaler. The output is compact, keeps key
// insertion order and writes non-ASCII characters and <, >, & literally.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalValue encodes a single record value the way MarshalJSON encodes it
// inside a record.
func MarshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent encodes r like MarshalJSON and indents the result with
// indent per nesting level. Empty objects and arrays stay on one line.
func MarshalIndent(r *Record, indent string) ([]byte, error) {
	compact, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return nil, fmt.Errorf("indenting record: %w", err)
	}
	return out.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch vv := v.(type) {
	case nil:
		buf.WriteString("null")
	case *Record:
		if vv == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range vv.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, vv.values[k]); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range vv {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []string:
		items := make([]any, len(vv))
		for i, s := range vv {
			items[i] = s
		}
		return encodeValue(buf, items)
	case map[string]any:
		return encodeValue(buf, FromMap(vv))
	case types.FilesystemPath:
		return encodeScalar(buf, string(vv))
	case json.Number:
		if !isNumberLiteral(vv) {
			return fmt.Errorf("%w: number %q", ErrUnsupportedValue, string(vv))
		}
		buf.WriteString(string(vv))
	default:
		return encodeScalar(buf, v)
	}
	return nil
}

func isNumberLiteral(n json.Number) bool {
	if n == "" || (n[0] != '-' && (n[0] < '0' || n[0] > '9')) {
		return false
	}
	return json.Valid([]byte(n))
}

// encodeScalar delegates leaf values to encoding/json with HTML escaping
// turned off.
func encodeScalar(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
