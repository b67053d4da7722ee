package declare

import (
	"log/slog"
	"math"

	"github.com/goccy/go-yaml"
)

func decodeYAML(data []byte) (map[string]any, error) {
	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("format", "yaml"))
	}

	vars := make(map[string]any, len(raw))
	for k, v := range raw {
		vars[k] = normalize(v)
	}

	return vars, nil
}

// normalize converts decoded values to the small set of Go types templates
// work with.
func normalize(v any) any {
	switch v := v.(type) {
	case int64:
		return int(v)
	case uint64:
		if v > math.MaxInt {
			return float64(v)
		}

		return int(v)
	case float32:
		return float64(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalize(e)
		}

		return out
	default:
		return v
	}
}
