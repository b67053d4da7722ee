package engine

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
)

// piece is a span of expanded output. Deferred pieces are re-expanded by
// the next pass.
type piece struct {
	text      string
	remaining int
	deferred  bool
}

// Expand compiles and runs source against host, then re-expands deferred
// literal bodies until none remain or the pass limit is reached.
//
// Each pass commits its declarations and stored values to host as soon as
// it succeeds, so an error in a later pass leaves the changes of earlier
// passes in place. Callers that need all-or-nothing behavior expand against
// a derived copy of their scope and keep it only when Expand succeeds.
func (e *Engine) Expand(ctx context.Context, source string, host any) (string, error) {
	hv := reflect.ValueOf(host)

	pieces, err := e.pass(source, hv, unbounded)
	if err != nil {
		return "", err
	}

	for n := 2; ; n++ {
		pending := 0

		for _, p := range pieces {
			if p.deferred {
				pending++
			}
		}

		e.logger.TraceContext(ctx, "expand pass complete",
			slog.Int("pass", n-1),
			slog.Int("deferred", pending),
		)

		if pending == 0 {
			break
		}

		if n > e.maxPasses {
			e.logger.DebugContext(ctx, "pass limit reached",
				slog.Int("max_passes", e.maxPasses),
				slog.Int("deferred", pending),
			)

			break
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}

		next := make([]piece, 0, len(pieces))

		for _, p := range pieces {
			if !p.deferred {
				next = append(next, p)

				continue
			}

			budget := unbounded
			if p.remaining > 0 {
				budget = p.remaining - 1
			}

			sub, err := e.pass(p.text, hv, budget)
			if err != nil {
				return "", err
			}

			next = append(next, sub...)
		}

		pieces = next
	}

	var sb strings.Builder
	for _, p := range pieces {
		sb.WriteString(p.text)
	}

	return sb.String(), nil
}

// pass runs one generation over source and splits the output at the
// deferred regions it produced.
func (e *Engine) pass(source string, hv reflect.Value, budget int) ([]piece, error) {
	t, err := e.compile(source, hv, budget)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder

	f, err := t.run(hv, &sb)
	if err != nil {
		return nil, err
	}

	out := sb.String()
	pieces := make([]piece, 0, 2*len(f.regions)+1)
	pos := 0

	for _, r := range f.regions {
		if r.start > pos {
			pieces = append(pieces, piece{text: out[pos:r.start]})
		}

		pieces = append(pieces, piece{
			text:      out[r.start:r.end],
			remaining: r.remaining,
			deferred:  true,
		})
		pos = r.end
	}

	if pos < len(out) {
		pieces = append(pieces, piece{text: out[pos:]})
	}

	return pieces, nil
}
