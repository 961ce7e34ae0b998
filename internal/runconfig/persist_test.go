// SPDX-License-Identifier: MPL-2.0

package runconfig

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/runcfg/runcfg/internal/validate"
	"github.com/runcfg/runcfg/pkg/cueutil"
	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

func writeFile(t *testing.T, path, content string) types.FilesystemPath {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return types.FilesystemPath(path)
}

func readFile(t *testing.T, path types.FilesystemPath) string {
	t.Helper()

	data, err := os.ReadFile(string(path))
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}

func TestSave_Layout(t *testing.T) {
	t.Parallel()

	path := types.FilesystemPath(filepath.Join(t.TempDir(), "a", "b", "cfg.json"))
	rec := record.New().
		Set("name", "日本語 <&>").
		Set("paths", []any{types.FilesystemPath("/data"), record.New().Set("p", types.FilesystemPath("/out"))}).
		Set("empty", record.New()).
		Set("n", 1)

	if err := newTestManager(t).Save(rec, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	want := `{
    "name": "日本語 <&>",
    "paths": [
        "/data",
        {
            "p": "/out"
        }
    ],
    "empty": {},
    "n": 1
}`
	if got := readFile(t, path); got != want {
		t.Errorf("file content:\n%s\nwant:\n%s", got, want)
	}
}

func TestSave_NormalizesPathsAtAnyDepth(t *testing.T) {
	t.Parallel()

	inner := record.New().Set("deep", []any{[]any{types.FilesystemPath("/x")}})
	rec := record.New().
		Set("config_path", types.FilesystemPath("/runs/a.json")).
		Set("nested", record.New().Set("inner", inner)).
		Set("list", []types.FilesystemPath{"/a", "/b"})

	path := types.FilesystemPath(filepath.Join(t.TempDir(), "cfg.json"))
	if err := newTestManager(t).Save(rec, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	v, _ := rec.Get("config_path")
	if _, ok := v.(string); !ok {
		t.Errorf("config_path is %T after Save, want string", v)
	}
	deep, _ := inner.Get("deep")
	if _, ok := deep.([]any)[0].([]any)[0].(string); !ok {
		t.Errorf("nested path not normalized: %#v", deep)
	}
	list, _ := rec.Get("list")
	if _, ok := list.([]any); !ok {
		t.Errorf("path list is %T after Save, want []any", list)
	}

	loaded, err := record.Parse([]byte(readFile(t, path)))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !loaded.Equal(rec) {
		t.Error("written document differs from record")
	}
}

func TestSave_EncodingFailureKeepsFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), `{"keep": true}`)
	rec := record.New().Set("ok", 1).Set("bad", make(chan int))

	err := newTestManager(t).Save(rec, path)
	if !errors.Is(err, record.ErrUnsupportedValue) {
		t.Fatalf("Save() error = %v, want ErrUnsupportedValue", err)
	}
	if got := readFile(t, path); got != `{"keep": true}` {
		t.Errorf("file was modified: %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  *record.Record
	}{
		{
			name: "mixed values",
			rec: record.New().
				Set("z", "last-first").
				Set("a", record.New().Set("lr", 0.001).Set("layers", []any{64, 32})).
				Set("path", types.FilesystemPath("/tmp/x")).
				Set("nil", nil).
				Set("flag", false),
		},
		{
			// Reserved keys are only conventions; AddInfo may overwrite them
			// with anything.
			name: "reserved keys with free-form values",
			rec: record.New().
				Set("z", "x").
				Set("a", 1).
				Set("train_datetime", "yesterday").
				Set("python", "3.11").
				Set("repository", record.New().Set("commit_version", "abc")).
				Set("hyper_params", []any{"lbfgs"}).
				Set("config_path", ""),
		},
		{
			name: "larger than the schema size limit",
			rec: record.New().
				Set("z", strings.Repeat("w", int(cueutil.DefaultMaxFileSize))).
				Set("a", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// NewManager's default validator, not a test stub.
			m := NewManager(WithLogger(log.New(io.Discard)))
			path := types.FilesystemPath(filepath.Join(t.TempDir(), "cfg.json"))
			if err := m.Save(tt.rec, path); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			got, err := m.Load(path, []string{"z", "a"})
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if !got.Equal(tt.rec) {
				a, _ := got.MarshalJSON()
				b, _ := tt.rec.MarshalJSON()
				if len(a) > 200 {
					a, b = a[:200], b[:200]
				}
				t.Errorf("round trip mismatch:\n got %s\nwant %s", a, b)
			}
		})
	}
}

func TestLoad_NotObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		kind    string
	}{
		{name: "array", content: `[1, 2, 3]`, kind: "array"},
		{name: "string", content: `"config"`, kind: "string"},
		{name: "number", content: `42`, kind: "number"},
		{name: "null", content: `null`, kind: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), tt.content)
			rec, err := newTestManager(t).Load(path, nil)
			if rec != nil {
				t.Errorf("Load() returned a record alongside error")
			}
			var noe *record.NotObjectError
			if !errors.As(err, &noe) || !errors.Is(err, record.ErrNotObject) {
				t.Fatalf("Load() error = %v, want *record.NotObjectError", err)
			}
			if noe.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", noe.Kind, tt.kind)
			}
		})
	}
}

type stubValidator struct{ err error }

func (v stubValidator) Validate(*record.Record, []string) error { return v.err }

func TestLoad_ValidationErrorPropagatesUnmodified(t *testing.T) {
	t.Parallel()

	errInvalid := errors.New("invalid record")
	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), `{"a": 1}`)

	rec, err := newTestManager(t, WithValidator(stubValidator{err: errInvalid})).Load(path, []string{"a"})
	if err != errInvalid { //nolint:errorlint
		t.Errorf("Load() error = %v, want the validator's error itself", err)
	}
	if rec != nil {
		t.Error("Load() returned a partial record")
	}
}

func TestLoad_MissingKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), `{"a": 1}`)
	_, err := newTestManager(t).Load(path, []string{"a", "b", "c"})

	var mke *validate.MissingKeysError
	if !errors.As(err, &mke) || !slices.Equal(mke.Keys, []string{"b", "c"}) {
		t.Errorf("Load() error = %v, want missing b and c", err)
	}
}

func TestLoad_ReadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := newTestManager(t)

	if _, err := m.Load(types.FilesystemPath(filepath.Join(dir, "absent.json")), nil); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(absent) error = %v, want fs.ErrNotExist", err)
	}

	bad := writeFile(t, filepath.Join(dir, "bad.json"), `{"a": `)
	if _, err := m.Load(bad, nil); !errors.Is(err, record.ErrSyntax) {
		t.Errorf("Load(malformed) error = %v, want record.ErrSyntax", err)
	}
}

func TestAddInfo(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), `{"a": 1, "nested": {"x": 1, "y": 2}}`)

	if err := m.AddInfo(path, record.New().Set("foo", 1)); err != nil {
		t.Fatalf("AddInfo() error: %v", err)
	}
	rec, err := m.Load(path, []string{"foo"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if v, _ := rec.Get("foo"); !isNumber(v, "1") {
		t.Errorf("foo = %v, want 1", v)
	}

	updates := record.New().Set("foo", 2).Set("nested", record.New().Set("z", 3))
	if err := m.AddInfo(path, updates); err != nil {
		t.Fatalf("AddInfo() error: %v", err)
	}

	want := `{
    "a": 1,
    "nested": {
        "z": 3
    },
    "foo": 2
}`
	if got := readFile(t, path); got != want {
		t.Errorf("file content:\n%s\nwant:\n%s", got, want)
	}
}

func isNumber(v any, text string) bool {
	n, ok := v.(interface{ String() string })
	return ok && n.String() == text
}

func TestAddInfo_RejectsNonObject(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), `[]`)
	err := newTestManager(t).AddInfo(path, record.New().Set("foo", 1))
	if !errors.Is(err, record.ErrNotObject) {
		t.Fatalf("AddInfo() error = %v, want ErrNotObject", err)
	}
	if got := readFile(t, path); got != `[]` {
		t.Errorf("file was modified: %q", got)
	}
}

func TestAddInfo_UnencodableUpdateKeepsFile(t *testing.T) {
	t.Parallel()

	original := `{"a": 1}`
	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), original)
	err := newTestManager(t).AddInfo(path, record.New().Set("fn", func() {}))
	if err == nil {
		t.Fatal("AddInfo() expected error")
	}
	if got := readFile(t, path); got != original {
		t.Errorf("file was modified: %q", got)
	}
}

func TestRemoveInfo_Idempotent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), `{"a": 1, "b": 2, "c": 3}`)
	keys := []string{"b", "missing"}

	if err := m.RemoveInfo(path, keys); err != nil {
		t.Fatalf("RemoveInfo() error: %v", err)
	}
	once := readFile(t, path)

	if err := m.RemoveInfo(path, keys); err != nil {
		t.Fatalf("second RemoveInfo() error: %v", err)
	}
	twice := readFile(t, path)

	if once != twice {
		t.Errorf("second removal changed the file:\n%s\n---\n%s", once, twice)
	}
	want := "{\n    \"a\": 1,\n    \"c\": 3\n}"
	if once != want {
		t.Errorf("file content = %q, want %q", once, want)
	}
}

func TestRemoveInfo_AllKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "cfg.json"), `{"a": 1}`)
	if err := newTestManager(t).RemoveInfo(path, []string{"a"}); err != nil {
		t.Fatalf("RemoveInfo() error: %v", err)
	}
	if got := readFile(t, path); got != "{}" {
		t.Errorf("file content = %q, want {}", got)
	}
}

func TestSave_InvalidPath(t *testing.T) {
	t.Parallel()

	err := newTestManager(t).Save(record.New(), "")
	if !errors.Is(err, types.ErrInvalidFilesystemPath) {
		t.Errorf("Save(\"\") error = %v", err)
	}
	if !strings.Contains(err.Error(), "non-empty") {
		t.Errorf("unexpected message: %v", err)
	}
}
