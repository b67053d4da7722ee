package declare

import (
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/stencil/pkg"
)

// Declaration errors.
var (
	ErrUnsupportedFormat = pkg.NewError("unsupported declaration format")
	ErrReadFile          = pkg.NewError("read declaration file")
	ErrDecode            = pkg.NewError("decode declarations")
	ErrInvalidName       = pkg.NewError("invalid variable name")
	ErrInvalidPair       = pkg.NewError("expected name=value")
)

// Format identifies a declaration file syntax.
type Format int

// Supported formats.
const (
	FormatYAML Format = iota
	FormatJSON
	FormatHCL
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatHCL:
		return "hcl"
	default:
		return "unknown"
	}
}

// Setter stores a declared variable.
type Setter interface {
	Set(name string, value any)
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return 0, ErrUnsupportedFormat.With(slog.String("path", path))
	}
}

// Decode parses data in the given format.
func Decode(format Format, name string, data []byte) (map[string]any, error) {
	var (
		vars map[string]any
		err  error
	)

	switch format {
	case FormatYAML, FormatJSON:
		vars, err = decodeYAML(data)
	case FormatHCL:
		vars, err = decodeHCL(name, data)
	default:
		return nil, ErrUnsupportedFormat.With(slog.String("format", format.String()))
	}

	if err != nil {
		return nil, err
	}

	for n := range vars {
		if !validName(n) {
			return nil, ErrInvalidName.With(slog.String("name", n), slog.String("source", name))
		}
	}

	return vars, nil
}

// Load reads declarations from the file at path.
func Load(path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadFile.Wrap(err).With(slog.String("path", path))
	}

	return Decode(format, path, data)
}

// Apply stores vars into s in name order.
func Apply(s Setter, vars map[string]any) {
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		s.Set(name, vars[name])
	}
}

func validName(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}
