package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolve(t *testing.T) {
	const doc = `
log-level: debug
log_pretty: false
max-passes: 4
ratio: 0.5
vars:
  - a.yaml
  - 2
`

	r, err := resolve(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-pretty", false},
		{"max-passes", "4"},
		{"ratio", "0.5"},
		{"vars", []any{"a.yaml", "2"}},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := &kong.Flag{Value: &kong.Value{Name: tt.flag}}

			got, err := r.Resolve(nil, nil, flag)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	if _, err := resolve(strings.NewReader("- not\n- a mapping\n")); err == nil {
		t.Error("resolve(sequence) succeeded, want error")
	}
}
