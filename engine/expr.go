package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	exprparser "github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/stencil/bind"
)

// Expr is a compiled expression bound to a host type.
type Expr struct {
	source  string
	pos     Pos
	program *vm.Program
	reads   map[string]*bind.Read
	static  map[string]any
}

// identifiers collects the free names of an expression.
type identifiers struct {
	seen  map[string]bool
	names []string
	bound map[string]bool
}

// Visit implements ast.Visitor.
func (v *identifiers) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !v.seen[n.Value] {
			v.seen[n.Value] = true
			v.names = append(v.names, n.Value)
		}

	case *ast.VariableDeclaratorNode:
		v.bound[n.Name] = true
	}
}

func freeNames(node ast.Node) []string {
	v := &identifiers{seen: map[string]bool{}, bound: map[string]bool{}}
	ast.Walk(&node, v)

	names := v.names[:0]

	for _, n := range v.names {
		if v.bound[n] || strings.HasPrefix(n, "$") {
			continue
		}

		names = append(names, n)
	}

	return names
}

// exemplar returns a value of type t for expr's type checker. Interface
// and unknown types are represented by nil.
func exemplar(t reflect.Type) any {
	if t == nil || t.Kind() == reflect.Interface {
		return nil
	}

	return reflect.Zero(t).Interface()
}

// Expr compiles src. Every free identifier must be owned by the binder chain
// or name a built-in helper.
func (c *Compiler) Expr(src string, pos Pos, opts ...expr.Option) (*Expr, error) {
	source := slog.String("expr", src)

	tree, err := exprparser.Parse(src)
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(source).With(pos.Attrs()...)
	}

	x := &Expr{
		source: src,
		pos:    pos,
		reads:  map[string]*bind.Read{},
		static: map[string]any{},
	}
	env := map[string]any{}

	for _, name := range freeNames(tree.Node) {
		r, err := c.binder.BindRead(c.host, name)
		if err != nil {
			return nil, at(err, pos)
		}

		if r != nil {
			x.reads[name] = r
			env[name] = exemplar(r.Type)

			continue
		}

		if v, ok := c.engine.builtins[name]; ok {
			x.static[name] = v
			env[name] = v

			continue
		}

		if _, ok := builtin.Index[name]; ok {
			continue
		}

		return nil, ErrUnknownVariable.With(
			slog.String("name", name),
			slog.Any("suggest", suggest(name, c.known())),
		).With(pos.Attrs()...)
	}

	opts = append([]expr.Option{expr.Env(env)}, opts...)

	x.program, err = expr.Compile(src, opts...)
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(source).With(pos.Attrs()...)
	}

	return x, nil
}

// known returns every name an expression could reference.
func (c *Compiler) known() []string {
	names := c.decls.Names()
	for name := range c.engine.builtins {
		names = append(names, name)
	}

	return names
}

// Source returns the expression text.
func (x *Expr) Source() string { return x.source }

// Type returns the static result type, or nil when it is only known at run
// time.
func (x *Expr) Type() reflect.Type {
	t := x.program.Node().Type()
	if t == nil || t.Kind() == reflect.Interface {
		return nil
	}

	return t
}

// Eval runs the expression against the frame's host.
func (x *Expr) Eval(f *Frame) (any, error) {
	env := make(map[string]any, len(x.reads)+len(x.static))
	maps.Copy(env, x.static)

	for name, r := range x.reads {
		v, err := r.Get(f.host)
		if err != nil {
			return nil, at(err, x.pos)
		}

		env[name] = v
	}

	out, err := vm.Run(x.program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).
			With(slog.String("expr", x.source)).
			With(x.pos.Attrs()...)
	}

	return out, nil
}

// Output is a [Node] that writes the value of x. A nil value writes nothing.
func (x *Expr) Output(f *Frame) error {
	v, err := x.Eval(f)
	if err != nil || v == nil {
		return err
	}

	_, err = f.WriteString(format(v))

	return err
}

func format(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
