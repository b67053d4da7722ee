package engine

import (
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stencil/bind"
	"github.com/ardnew/stencil/scope"
)

// unbounded is the generation budget of top-level source.
const unbounded = -1

// Compiler turns segments into nodes for one host type.
//
// A Compiler works on a private copy of the host's declaration table. The
// copy is folded back into the host only after the compiled template has
// run successfully.
type Compiler struct {
	engine *Engine
	host   reflect.Type
	decls  scope.Declarations
	binder bind.Chain
	budget int
	once   *pendingOnce
}

// pendingOnce is a "pragma once" waiting for its literal.
type pendingOnce struct {
	count int
	pos   Pos
}

// Host returns the host type templates are compiled for.
func (c *Compiler) Host() reflect.Type { return c.host }

// Binder returns the binder chain used to resolve names.
func (c *Compiler) Binder() bind.Binder { return c.binder }

// Declarations returns the working declaration table.
func (c *Compiler) Declarations() scope.Declarations { return c.decls }

// Compile compiles a sequence of sibling segments.
func (c *Compiler) Compile(segs []Segment) (Node, error) {
	outer := c.once
	c.once = nil

	nodes := make([]Node, 0, len(segs))

	for i := range segs {
		n, err := c.segment(&segs[i])
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, n)
	}

	if c.once != nil {
		return nil, ErrPragma.With(
			slog.String("reason", "once is not followed by literal"),
		).With(c.once.pos.Attrs()...)
	}

	c.once = outer

	return Sequence(nodes...), nil
}

// Split divides segs at each self-closing directive named word.
func (c *Compiler) Split(segs []Segment, word string) [][]Segment {
	parts := [][]Segment{nil}

	for _, s := range segs {
		if s.Kind == SegmentDirective && s.Name == word && !s.HasBody {
			parts = append(parts, nil)

			continue
		}

		parts[len(parts)-1] = append(parts[len(parts)-1], s)
	}

	return parts
}

func (c *Compiler) segment(seg *Segment) (Node, error) {
	switch seg.Kind {
	case SegmentText:
		return Text(seg.Text), nil

	case SegmentExpr:
		x, err := c.Expr(seg.Text, seg.Pos)
		if err != nil {
			return nil, err
		}

		return x.Output, nil

	case SegmentDirective:
		return c.directive(seg)

	default:
		return nil, ErrSyntax.With(slog.String("segment", seg.Kind.String()))
	}
}

func (c *Compiler) directive(seg *Segment) (Node, error) {
	d, ok := c.engine.directives[seg.Name]
	if !ok {
		if owner, ok := c.engine.reserved[seg.Name]; ok {
			return nil, ErrSyntax.With(
				slog.String("reason", seg.Name+" outside of "+owner),
			).With(seg.Pos.Attrs()...)
		}

		return nil, ErrUnknownDirective.With(
			slog.String("name", seg.Name),
			slog.Any("suggest", suggest(seg.Name, c.engine.names)),
		).With(seg.Pos.Attrs()...)
	}

	spec := d.Spec()

	if c.once != nil && spec.Name != literalName {
		return nil, ErrPragma.With(
			slog.String("reason", "once must be followed by literal"),
			slog.String("next", spec.Name),
		).With(seg.Pos.Attrs()...)
	}

	if err := checkSpec(spec, seg); err != nil {
		return nil, err
	}

	n, err := d.Compile(c, seg)
	if err != nil {
		return nil, at(err, seg.Pos)
	}

	return n, nil
}

func checkSpec(spec Spec, seg *Segment) error {
	name := slog.String("directive", spec.Name)
	args := strings.TrimSpace(seg.Args)

	switch {
	case spec.Args == ArgsNone && args != "":
		return ErrUnexpectedArguments.With(name).With(seg.Pos.Attrs()...)

	case spec.Args == ArgsRequired && args == "":
		return ErrMissingArguments.With(name).With(seg.Pos.Attrs()...)

	case spec.Body == BodyNone && seg.HasBody:
		return ErrUnexpectedBody.With(name).With(seg.Pos.Attrs()...)

	case spec.Body == BodyRequired && strings.TrimSpace(seg.Body) == "":
		return ErrMissingBody.With(name).With(seg.Pos.Attrs()...)
	}

	return nil
}

// generation returns the remaining-pass count for a literal compiled now
// and consumes any pending "pragma once".
func (c *Compiler) generation() int {
	if c.once == nil {
		return c.budget
	}

	n := c.once.count - 1
	c.once = nil

	return n
}

// suggest returns up to three known names that fuzzy-match name.
func suggest(name string, known []string) []string {
	matches := fuzzy.Find(name, known)
	out := make([]string, 0, min(len(matches), 3))

	for _, m := range matches {
		if len(out) == cap(out) {
			break
		}

		out = append(out, m.Str)
	}

	if len(out) == 0 {
		return nil
	}

	return slices.Clip(out)
}
