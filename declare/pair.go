package declare

import (
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// ParsePair parses "name=value". The value is read as a YAML scalar, so
// "3" is an int and "true" a bool; anything unparsable is kept as a string.
func ParsePair(s string) (string, any, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)

	if !ok {
		return "", nil, ErrInvalidPair.With(slog.String("pair", s))
	}

	if !validName(name) {
		return "", nil, ErrInvalidName.With(slog.String("name", name))
	}

	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil || v == nil {
		return name, value, nil
	}

	return name, normalize(v), nil
}

// Pairs parses a list of "name=value" strings. Later pairs override earlier
// ones.
func Pairs(list []string) (map[string]any, error) {
	vars := make(map[string]any, len(list))

	for _, s := range list {
		name, v, err := ParsePair(s)
		if err != nil {
			return nil, err
		}

		vars[name] = v
	}

	return vars, nil
}
