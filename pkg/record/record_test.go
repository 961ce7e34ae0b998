// SPDX-License-Identifier: MPL-2.0

package record_test

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

func TestRecord_SetKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	r := record.New().Set("b", 1).Set("a", 2).Set("c", 3)
	r.Set("a", 20)

	if got, want := r.Keys(), []string{"b", "a", "c"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := r.Get("a"); v != 20 {
		t.Errorf("Get(a) = %v, want 20", v)
	}
}

func TestRecord_Delete(t *testing.T) {
	t.Parallel()

	r := record.New().Set("a", 1).Set("b", 2)
	if !r.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if r.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	if r.Delete("missing") {
		t.Error("Delete(missing) = true, want false")
	}
	if got, want := r.Keys(), []string{"b"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	r.Set("a", 3)
	if got, want := r.Keys(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("re-added key should go last: Keys() = %v, want %v", got, want)
	}
}

func TestRecord_NormalizePaths(t *testing.T) {
	t.Parallel()

	inner := record.New().Set("model", types.FilesystemPath("/models/lr.pkl"))
	r := record.New().
		Set("config_path", types.FilesystemPath("/runs/config.json")).
		Set("nested", record.New().Set("deeper", inner)).
		Set("list", []any{
			types.FilesystemPath("/a"),
			[]any{types.FilesystemPath("/b")},
			record.New().Set("p", types.FilesystemPath("/c")),
		}).
		Set("typed_list", []types.FilesystemPath{"/d", "/e"})

	r.NormalizePaths()

	assertNoPaths(t, r)
	if s, ok := r.GetString("config_path"); !ok || s != "/runs/config.json" {
		t.Errorf("config_path = %q, %v", s, ok)
	}
}

func assertNoPaths(t *testing.T, v any) {
	t.Helper()
	switch vv := v.(type) {
	case types.FilesystemPath:
		t.Errorf("found FilesystemPath %q after NormalizePaths", vv)
	case *record.Record:
		for _, k := range vv.Keys() {
			child, _ := vv.Get(k)
			assertNoPaths(t, child)
		}
	case []any:
		for _, item := range vv {
			assertNoPaths(t, item)
		}
	case []types.FilesystemPath:
		t.Errorf("found []FilesystemPath %v after NormalizePaths", vv)
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := record.New().Set("nested", record.New().Set("x", 1)).Set("list", []any{"a"})
	clone := orig.Clone()

	nested, _ := clone.GetRecord("nested")
	nested.Set("x", 2)
	list, _ := clone.Get("list")
	list.([]any)[0] = "b"

	origNested, _ := orig.GetRecord("nested")
	if v, _ := origNested.Get("x"); v != 1 {
		t.Errorf("original nested value changed to %v", v)
	}
	origList, _ := orig.Get("list")
	if origList.([]any)[0] != "a" {
		t.Errorf("original list changed to %v", origList)
	}
}

func TestRecord_Equal(t *testing.T) {
	t.Parallel()

	a := record.New().Set("n", 5).Set("p", types.FilesystemPath("/x"))
	b := record.New().Set("n", json.Number("5")).Set("p", "/x")
	if !a.Equal(b) {
		t.Error("records with equivalent values should be equal")
	}

	c := record.New().Set("p", "/x").Set("n", 5)
	if a.Equal(c) {
		t.Error("records with different key order should not be equal")
	}
}

func TestFromMap_SortsKeys(t *testing.T) {
	t.Parallel()

	r := record.FromMap(map[string]any{"solver": "lbfgs", "cv": 5, "nested": map[string]any{"z": 1, "a": 2}})
	if got, want := r.Keys(), []string{"cv", "nested", "solver"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	nested, ok := r.GetRecord("nested")
	if !ok {
		t.Fatal("nested map was not converted to *Record")
	}
	if got, want := nested.Keys(), []string{"a", "z"}; !slices.Equal(got, want) {
		t.Errorf("nested Keys() = %v, want %v", got, want)
	}
}

func TestRecord_Map(t *testing.T) {
	t.Parallel()

	r := record.New().
		Set("p", types.FilesystemPath("/x")).
		Set("nested", record.New().Set("k", "v"))

	m := r.Map()
	if m["p"] != "/x" {
		t.Errorf(`m["p"] = %v, want "/x"`, m["p"])
	}
	nested, ok := m["nested"].(map[string]any)
	if !ok || nested["k"] != "v" {
		t.Errorf(`m["nested"] = %#v`, m["nested"])
	}
}

func TestParse_NotObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKind string
	}{
		{"array", `[1, 2, 3]`, "array"},
		{"string", `"config"`, "string"},
		{"number", `42`, "number"},
		{"boolean", `true`, "boolean"},
		{"null", `null`, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := record.Parse([]byte(tt.input))
			if err == nil {
				t.Fatalf("Parse(%s) = %v, want error", tt.input, r)
			}
			if r != nil {
				t.Errorf("Parse(%s) returned a value alongside the error", tt.input)
			}
			var notObj *record.NotObjectError
			if !errors.As(err, &notObj) {
				t.Fatalf("error should be *NotObjectError, got %T: %v", err, err)
			}
			if notObj.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", notObj.Kind, tt.wantKind)
			}
			if !errors.Is(err, record.ErrNotObject) {
				t.Error("error should wrap ErrNotObject")
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"whitespace", "  \n"},
		{"unterminated object", `{"a": 1`},
		{"trailing garbage", `{"a": 1} x`},
		{"missing colon", `{"a" 1}`},
		{"two decimal points", `{"version": 1.2.3}`},
		{"leading zero", `{"zip": [01234]}`},
		{"date-like number", `2024-01-01`},
		{"lone minus", `{"a": -}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := record.Parse([]byte(tt.input))
			if !errors.Is(err, record.ErrSyntax) {
				t.Errorf("Parse(%q) error = %v, want ErrSyntax", tt.input, err)
			}
		})
	}
}

func TestParse_PreservesOrderAndNumbers(t *testing.T) {
	t.Parallel()

	input := `{"z": {"b": 1, "a": 0.10}, "a": [1, {"y": null, "x": false}], "m": "日本"}`
	r, err := record.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := r.Keys(), []string{"z", "a", "m"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	z, _ := r.GetRecord("z")
	if got, want := z.Keys(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("nested Keys() = %v, want %v", got, want)
	}
	if v, _ := z.Get("a"); v != json.Number("0.10") {
		t.Errorf("number literal = %#v, want json.Number(\"0.10\")", v)
	}

	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	want := `{"z":{"b":1,"a":0.10},"a":[1,{"y":null,"x":false}],"m":"日本"}`
	if string(out) != want {
		t.Errorf("MarshalJSON() = %s, want %s", out, want)
	}
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{`"lbfgs"`, `"lbfgs"`},
		{`0.001`, `0.001`},
		{`true`, `true`},
		{`null`, `null`},
		{`[3, "a"]`, `[3,"a"]`},
		{`{"b": 1, "a": 2}`, `{"b":1,"a":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			v, err := record.ParseValue([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseValue(%s) error = %v", tt.input, err)
			}
			out, err := record.New().Set("v", v).MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if want := `{"v":` + tt.want + `}`; string(out) != want {
				t.Errorf("round trip = %s, want %s", out, want)
			}
		})
	}

	if out, err := record.MarshalValue([]any{types.FilesystemPath("/a"), 1}); err != nil || string(out) != `["/a",1]` {
		t.Errorf("MarshalValue() = %s, %v", out, err)
	}
	for _, bad := range []string{`1, 2`, `1.2.3`, `2024-01-01`, `01234`, `1e`} {
		if _, err := record.ParseValue([]byte(bad)); !errors.Is(err, record.ErrSyntax) {
			t.Errorf("ParseValue(%s) error = %v, want ErrSyntax", bad, err)
		}
	}
}

func TestMarshalIndent_Layout(t *testing.T) {
	t.Parallel()

	r := record.New().
		Set("config_path", types.FilesystemPath("/runs/設定.json")).
		Set("hyper_params", record.New().Set("cv", 5).Set("solver", "a<b&c")).
		Set("empty", record.New()).
		Set("packages", []string{})

	out, err := record.MarshalIndent(r, record.DefaultIndent)
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}

	want := strings.Join([]string{
		`{`,
		`    "config_path": "/runs/設定.json",`,
		`    "hyper_params": {`,
		`        "cv": 5,`,
		`        "solver": "a<b&c"`,
		`    },`,
		`    "empty": {},`,
		`    "packages": []`,
		`}`,
	}, "\n")
	if string(out) != want {
		t.Errorf("MarshalIndent() =\n%s\nwant\n%s", out, want)
	}
}

func TestMarshalJSON_UnsupportedValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{"channel", make(chan int)},
		{"bad number literal", json.Number("NaN")},
		{"nested bad value", record.New().Set("f", func() {})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := record.New().Set("k", tt.value).MarshalJSON()
			if !errors.Is(err, record.ErrUnsupportedValue) {
				t.Errorf("MarshalJSON() error = %v, want ErrUnsupportedValue", err)
			}
		})
	}
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var wrapper struct {
		Config *record.Record `json:"config"`
	}
	if err := json.Unmarshal([]byte(`{"config": {"b": 1, "a": 2}}`), &wrapper); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got, want := wrapper.Config.Keys(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
