package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files.
//
// The document is a flat mapping from flag name to value. Keys may use
// either hyphens or underscores:
//
//	log-level: debug
//	log_pretty: false
//	max-passes: 4
//
// Command-line flags override config file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}

	cfg := make(config, len(doc))
	for key, value := range doc {
		cfg[key] = flagValue(value)
	}

	return cfg, nil
}

// flagValue converts a decoded YAML value into the form kong parses.
// Numbers are formatted as strings; sequences become their elements.
func flagValue(v any) any {
	switch v := v.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	}

	return v
}

// config implements [kong.Resolver] over a flat configuration map.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Flags missing from the configuration
// resolve to nil so kong uses their defaults.
func (r config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}
