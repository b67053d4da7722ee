package engine

import (
	"io"
	"reflect"
)

// Node is an executable piece of a compiled template.
type Node func(f *Frame) error

// Frame is the state a [Node] runs against.
type Frame struct {
	host    reflect.Value
	out     io.StringWriter
	written int
	regions []deferral
}

// deferral marks output written by a literal that a later pass may expand.
type deferral struct {
	start, end int
	remaining  int
}

func newFrame(host reflect.Value, out io.StringWriter) *Frame {
	return &Frame{host: host, out: out}
}

// Host returns the context value the template runs against.
func (f *Frame) Host() reflect.Value { return f.host }

// WriteString implements [io.StringWriter].
func (f *Frame) WriteString(s string) (int, error) {
	n, err := f.out.WriteString(s)
	f.written += n

	if err != nil {
		return n, ErrWrite.Wrap(err)
	}

	return n, nil
}

// deferText writes s and records it for re-expansion with the given number
// of remaining passes (negative for unbounded).
func (f *Frame) deferText(s string, remaining int) error {
	start := f.written

	_, err := f.WriteString(s)
	if err != nil {
		return err
	}

	f.regions = append(f.regions, deferral{
		start:     start,
		end:       f.written,
		remaining: remaining,
	})

	return nil
}

// Text returns a node that writes s.
func Text(s string) Node {
	return func(f *Frame) error {
		_, err := f.WriteString(s)

		return err
	}
}

// Nop is a node without effect.
func Nop(*Frame) error { return nil }

// Sequence returns a node that runs nodes in order and stops at the first
// error.
func Sequence(nodes ...Node) Node {
	switch len(nodes) {
	case 0:
		return Nop
	case 1:
		return nodes[0]
	}

	return func(f *Frame) error {
		for _, n := range nodes {
			if err := n(f); err != nil {
				return err
			}
		}

		return nil
	}
}
