package declare

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ardnew/stencil/scope"
)

func TestDecode_Formats(t *testing.T) {
	want := map[string]any{
		"name":    "stencil",
		"count":   3,
		"ratio":   0.5,
		"enabled": true,
		"tags":    []any{"a", "b"},
		"meta":    map[string]any{"owner": "ops"},
	}

	tests := []struct {
		format Format
		src    string
	}{
		{FormatYAML, `
name: stencil
count: 3
ratio: 0.5
enabled: true
tags: [a, b]
meta:
  owner: ops
`},
		{FormatJSON, `{
  "name": "stencil", "count": 3, "ratio": 0.5, "enabled": true,
  "tags": ["a", "b"], "meta": {"owner": "ops"}
}`},
		{FormatHCL, `
name    = "stencil"
count   = 3
ratio   = 0.5
enabled = true
tags    = ["a", "b"]
meta    = { owner = "ops" }
`},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			got, err := Decode(tt.format, "vars."+tt.format.String(), []byte(tt.src))
			if err != nil {
				t.Fatal(err)
			}

			if !reflect.DeepEqual(got, want) {
				t.Errorf("Decode() = %#v\nwant %#v", got, want)
			}
		})
	}
}

func TestDecode_HCLEnvironment(t *testing.T) {
	t.Setenv("STENCIL_DECLARE_TEST", "from-env")

	got, err := Decode(FormatHCL, "env.hcl", []byte(`value = "${env.STENCIL_DECLARE_TEST}!"`))
	if err != nil {
		t.Fatal(err)
	}

	if got["value"] != "from-env!" {
		t.Errorf("value = %v", got["value"])
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		src    string
		want   error
	}{
		{"yaml syntax", FormatYAML, "a: [1, 2", ErrDecode},
		{"hcl syntax", FormatHCL, "a = ", ErrDecode},
		{"hcl block", FormatHCL, "block {\n}\n", ErrDecode},
		{"invalid name", FormatYAML, "not-valid: 1", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.format, "input", []byte(tt.src))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_DetectsFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vars.yml")

	if err := os.WriteFile(path, []byte("greeting: hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if got["greeting"] != "hello" {
		t.Errorf("greeting = %v", got["greeting"])
	}

	if _, err := Load(filepath.Join(dir, "vars.toml")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrReadFile) {
		t.Errorf("err = %v, want ErrReadFile", err)
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		value   any
		wantErr error
	}{
		{"n=3", "n", 3, nil},
		{"flag=true", "flag", true, nil},
		{"s=hello world", "s", "hello world", nil},
		{"empty=", "empty", "", nil},
		{"list=[1, 2]", "list", []any{1, 2}, nil},
		{"novalue", "", nil, ErrInvalidPair},
		{"1x=2", "", nil, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, err := ParsePair(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if name != tt.name || !reflect.DeepEqual(value, tt.value) {
				t.Errorf("ParsePair() = %q, %#v, want %q, %#v", name, value, tt.name, tt.value)
			}
		})
	}
}

func TestApply_DeclaresTypes(t *testing.T) {
	s := scope.New()

	vars, err := Pairs([]string{"n=1", "name=x", "n=2"})
	if err != nil {
		t.Fatal(err)
	}

	Apply(s, vars)

	if v, _ := s.Lookup("n"); v != 2 {
		t.Errorf("n = %v, want 2", v)
	}

	if typ, _ := s.Declarations().Type("name"); typ != reflect.TypeFor[string]() {
		t.Errorf("name declared as %v", typ)
	}
}
