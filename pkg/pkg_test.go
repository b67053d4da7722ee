package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "stencil"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Fatal("Expected embedded Version to be non-empty")
	}

	if strings.TrimSpace(Version) != Version {
		t.Errorf("Expected Version to be trimmed, got %q", Version)
	}
}

func TestError_IsMatchesDerivedErrors(t *testing.T) {
	sentinel := NewError("something failed")
	other := NewError("something failed")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", sentinel, true},
		{"with", sentinel.With(slog.String("k", "v")), true},
		{"wrap", sentinel.Wrap(errors.New("cause")), true},
		{"chained", sentinel.With(slog.Int("n", 1)).Wrap(os.ErrNotExist), true},
		{"fmt wrapped", fmt.Errorf("outer: %w", sentinel.With()), true},
		{"same message different sentinel", other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, sentinel); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_WrapPreservesCause(t *testing.T) {
	err := NewError("read").Wrap(os.ErrNotExist)

	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected wrapped cause to match os.ErrNotExist")
	}
}

func TestError_MessageIncludesAttrs(t *testing.T) {
	err := NewError("syntax error").
		With(slog.Int("line", 3), slog.Int("column", 7)).
		Wrap(errors.New("unexpected token"))

	want := "syntax error [line=3 column=7]: unexpected token"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")

	err := WriteFile(path, []byte("data"))
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "data" {
		t.Errorf("content = %q, want %q", got, "data")
	}
}
