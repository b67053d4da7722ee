package engine

import (
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

// unitCache holds parsed units keyed by a hash of the source and the set of
// raw-bodied directive names. Units are never mutated after parsing.
//
//nolint:gochecknoglobals
var unitCache sync.Map

func cacheKey(source string, raw []string) string {
	h := xxh3.HashString(source) ^ xxh3.HashString(strings.Join(raw, "\x00"))

	return strconv.FormatUint(h, 36) + ":" + strconv.Itoa(len(source))
}

// parseCached is [Parse] with memoization of successful results.
func parseCached(source string, opts ...ParseOption) (*Unit, bool, error) {
	p := &parser{src: source, raw: map[string]bool{}}
	for _, opt := range opts {
		opt(p)
	}

	key := cacheKey(source, p.rawNames())

	if v, ok := unitCache.Load(key); ok {
		if u, ok := v.(*Unit); ok && u.Source == source {
			return u, true, nil
		}
	}

	segs, err := p.parse(0, len(source))
	if err != nil {
		return nil, false, err
	}

	u := &Unit{Source: source, Segments: segs}
	unitCache.Store(key, u)

	return u, false, nil
}
