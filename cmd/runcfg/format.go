// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

func isOutputFormat(format string) bool {
	return format == formatJSON || format == formatTOML
}

// encodeRecord renders rec for the terminal. JSON keeps the on-disk layout;
// TOML drops null values, which TOML cannot express.
func encodeRecord(rec *record.Record, format string) ([]byte, error) {
	switch format {
	case formatTOML:
		out, err := toml.Marshal(tomlValue(rec))
		if err != nil {
			return nil, fmt.Errorf("encoding TOML: %w", err)
		}
		return out, nil
	default:
		out, err := record.MarshalIndent(rec, record.DefaultIndent)
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}
}

func tomlValue(v any) any {
	switch vv := v.(type) {
	case *record.Record:
		m := make(map[string]any, vv.Len())
		for _, k := range vv.Keys() {
			if item, _ := vv.Get(k); item != nil {
				m[k] = tomlValue(item)
			}
		}
		return m
	case []any:
		out := make([]any, 0, len(vv))
		for _, item := range vv {
			if item != nil {
				out = append(out, tomlValue(item))
			}
		}
		return out
	case json.Number:
		if i, err := vv.Int64(); err == nil {
			return i
		}
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return vv.String()
	case types.FilesystemPath:
		return string(vv)
	default:
		return v
	}
}
