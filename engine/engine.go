package engine

import (
	"io"
	"log/slog"
	"reflect"
	"slices"

	"github.com/ardnew/stencil/bind"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/pkg"
	"github.com/ardnew/stencil/scope"
)

// ErrContextType is returned when a template runs against a host of a
// different type than it was compiled for.
var ErrContextType = pkg.NewError("template compiled for a different context type")

// Engine compiles and expands templates with a fixed directive set.
// An Engine is safe for concurrent use once constructed.
type Engine struct {
	directives map[string]Directive
	reserved   map[string]string // reserved word -> owning directive
	names      []string
	raw        []string
	binders    []bind.Binder
	builtins   map[string]any
	environ    []string
	maxPasses  int
	logger     log.Logger
}

// New returns an engine with the built-in directives.
func New(opts ...Option) *Engine {
	e := &Engine{
		directives: map[string]Directive{},
		reserved:   map[string]string{},
		maxPasses:  DefaultMaxPasses,
	}

	for _, d := range defaultDirectives() {
		e.register(d)
	}

	for _, opt := range opts {
		opt(e)
	}

	e.builtins = makeBuiltins(e.environ)

	return e
}

func (e *Engine) register(d Directive) {
	spec := d.Spec()
	e.directives[spec.Name] = d

	for _, w := range spec.Reserved {
		e.reserved[w] = spec.Name
	}

	e.names = e.names[:0]
	e.raw = e.raw[:0]

	for name, d := range e.directives {
		e.names = append(e.names, name)
		if d.Spec().Raw {
			e.raw = append(e.raw, name)
		}
	}

	slices.Sort(e.names)
	slices.Sort(e.raw)
}

// Directives returns the registered directive names in sorted order.
func (e *Engine) Directives() []string { return slices.Clone(e.names) }

// MaxPasses returns the expansion pass limit.
func (e *Engine) MaxPasses() int { return e.maxPasses }

// Parse parses source with the engine's raw-bodied directives.
func (e *Engine) Parse(source string) (*Unit, error) {
	u, _, err := parseCached(source, WithRawBodies(e.raw...))

	return u, err
}

// Template is a compiled source unit.
type Template struct {
	unit     *Unit
	node     Node
	host     reflect.Type
	verbatim bool
	declared scope.Declarations
	removed  []string
}

// Compile compiles source for the type of host. Declarations made by the
// template are recorded on host only when the template is executed.
func (e *Engine) Compile(source string, host any) (*Template, error) {
	return e.compile(source, reflect.ValueOf(host), unbounded)
}

func declarationsOf(hv reflect.Value) scope.Declarations {
	if !hv.IsValid() || !hv.CanInterface() {
		return nil
	}

	if d, ok := hv.Interface().(scope.Declarer); ok {
		return d.Declarations()
	}

	return nil
}

func typeOf(hv reflect.Value) reflect.Type {
	if !hv.IsValid() {
		return nil
	}

	return hv.Type()
}

func (e *Engine) compile(source string, hv reflect.Value, budget int) (*Template, error) {
	host := typeOf(hv)

	if dontProcess(source) {
		e.logger.Trace("verbatim source", slog.Int("source_bytes", len(source)))

		return &Template{
			unit:     &Unit{Source: source},
			node:     Text(source),
			host:     host,
			verbatim: true,
		}, nil
	}

	u, hit, err := parseCached(source, WithRawBodies(e.raw...))
	if err != nil {
		return nil, err
	}

	e.logger.Trace("parse",
		slog.Bool("cache_hit", hit),
		slog.Int("segments", len(u.Segments)),
	)

	base := declarationsOf(hv).Clone()
	work := base.Clone()

	c := &Compiler{
		engine: e,
		host:   host,
		decls:  work,
		binder: append(slices.Clone(bind.Chain(e.binders)), bind.Member{}, bind.NewIndexer(work)),
		budget: budget,
	}

	node, err := c.Compile(u.Segments)
	if err != nil {
		return nil, err
	}

	t := &Template{unit: u, node: node, host: host, declared: scope.Declarations{}}

	for name, typ := range work {
		if prev, ok := base[name]; !ok || prev != typ {
			t.declared[name] = typ
		}
	}

	for name := range base {
		if _, ok := work[name]; !ok {
			t.removed = append(t.removed, name)
		}
	}

	return t, nil
}

// Unit returns the parsed source.
func (t *Template) Unit() *Unit { return t.unit }

// Verbatim reports whether the source is copied through unprocessed.
func (t *Template) Verbatim() bool { return t.verbatim }

// Execute runs the template against host, writing output to w.
func (t *Template) Execute(host any, w io.StringWriter) error {
	_, err := t.run(reflect.ValueOf(host), w)

	return err
}

func (t *Template) run(hv reflect.Value, w io.StringWriter) (*Frame, error) {
	if !t.verbatim && typeOf(hv) != t.host {
		return nil, ErrContextType.With(
			slog.String("want", typeName(t.host)),
			slog.String("got", typeName(typeOf(hv))),
		)
	}

	f := newFrame(hv, w)

	if err := t.node(f); err != nil {
		return nil, err
	}

	if d := declarationsOf(hv); d != nil {
		for name, typ := range t.declared {
			d.Declare(name, typ)
		}

		for _, name := range t.removed {
			d.Remove(name)
		}
	}

	return f, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	return t.String()
}
