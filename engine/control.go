package engine

import (
	"cmp"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/stencil/bind"
)

// undef removes the declaration of a variable:
//
//	$$#undef name /$$
type undef struct{}

func (undef) Spec() Spec {
	return Spec{Name: "undef", Body: BodyNone, Args: ArgsRequired}
}

func (undef) Compile(c *Compiler, seg *Segment) (Node, error) {
	name, err := identifier(seg.Args)
	if err != nil {
		return nil, err
	}

	exec, err := c.binder.Unbind(c.host, name)
	if err != nil {
		return nil, err
	}

	return func(f *Frame) error { return exec(f.host) }, nil
}

const elseWord = "else"

// cond writes one of two branches:
//
//	$$#if expr$$ then $$#else/$$ otherwise $$/if$$
type cond struct{}

func (cond) Spec() Spec {
	return Spec{
		Name:     "if",
		Body:     BodyRequired,
		Args:     ArgsRequired,
		Reserved: []string{elseWord},
	}
}

func (cond) Compile(c *Compiler, seg *Segment) (Node, error) {
	x, err := c.Expr(seg.Args, seg.Pos, expr.AsBool())
	if err != nil {
		return nil, err
	}

	parts := c.Split(seg.Children, elseWord)
	if len(parts) > 2 {
		return nil, ErrSyntax.With(slog.String("reason", "if has more than one else"))
	}

	then, err := c.Compile(parts[0])
	if err != nil {
		return nil, err
	}

	otherwise := Node(Nop)

	if len(parts) == 2 {
		otherwise, err = c.Compile(parts[1])
		if err != nil {
			return nil, err
		}
	}

	return func(f *Frame) error {
		v, err := x.Eval(f)
		if err != nil {
			return err
		}

		if ok, _ := v.(bool); ok {
			return then(f)
		}

		return otherwise(f)
	}, nil
}

// each writes its body once per element of a collection:
//
//	$$#each item in expr$$ ... $$/each$$
//	$$#each key, item in expr$$ ... $$/each$$
//
// The loop variables are restored to their previous declarations and values
// afterward.
type each struct{}

func (each) Spec() Spec {
	return Spec{Name: "each", Body: BodyRequired, Args: ArgsRequired}
}

// loopVar is a variable assigned on every iteration.
type loopVar struct {
	write   bind.Write
	saved   *bind.Read
	restore bind.Write
	drop    bind.Exec
}

func (each) Compile(c *Compiler, seg *Segment) (Node, error) {
	names, src, err := splitRange(seg.Args)
	if err != nil {
		return nil, err
	}

	x, err := c.Expr(src, seg.Pos)
	if err != nil {
		return nil, err
	}

	keyType, elemType := elementTypes(x.Type())
	types := []reflect.Type{elemType}

	if len(names) == 2 {
		types = []reflect.Type{keyType, elemType}
	}

	vars := make([]*loopVar, len(names))

	for i, name := range names {
		v := &loopVar{}

		v.saved, err = c.binder.BindRead(c.host, name)
		if err != nil {
			return nil, err
		}

		v.write, err = c.binder.BindWrite(c.host, name, types[i])
		if err != nil {
			return nil, err
		}

		vars[i] = v
	}

	body, err := c.Compile(seg.Children)
	if err != nil {
		return nil, err
	}

	for i, name := range names {
		v := vars[i]
		if v.saved != nil {
			v.restore, err = c.binder.BindWrite(c.host, name, v.saved.Type)
		} else {
			v.drop, err = c.binder.Unbind(c.host, name)
		}

		if err != nil {
			return nil, err
		}
	}

	return func(f *Frame) (err error) {
		coll, err := x.Eval(f)
		if err != nil {
			return err
		}

		saved := make([]any, len(vars))

		for i, v := range vars {
			if v.saved == nil {
				continue
			}

			saved[i], err = v.saved.Get(f.host)
			if err != nil {
				return err
			}
		}

		defer func() {
			for i, v := range vars {
				var rerr error
				if v.restore != nil {
					rerr = v.restore(f.host, saved[i])
				} else {
					rerr = v.drop(f.host)
				}

				if err == nil {
					err = rerr
				}
			}
		}()

		return iterate(coll, func(key, elem any) error {
			values := []any{elem}
			if len(vars) == 2 {
				values = []any{key, elem}
			}

			for i, v := range vars {
				if err := v.write(f.host, values[i]); err != nil {
					return err
				}
			}

			return body(f)
		})
	}, nil
}

// splitRange parses "[key,] item in expr".
func splitRange(args string) ([]string, string, error) {
	lhs, src, ok := strings.Cut(args, " in ")
	src = strings.TrimSpace(src)

	if !ok || src == "" {
		return nil, "", ErrSyntax.With(
			slog.String("reason", "expected [key,] item in expression"),
			slog.String("args", args),
		)
	}

	parts := strings.Split(lhs, ",")
	if len(parts) > 2 {
		return nil, "", ErrSyntax.With(
			slog.String("reason", "too many loop variables"),
			slog.String("args", args),
		)
	}

	names := make([]string, len(parts))

	for i, p := range parts {
		name, err := identifier(p)
		if err != nil {
			return nil, "", err
		}

		names[i] = name
	}

	return names, src, nil
}

func elementTypes(t reflect.Type) (reflect.Type, reflect.Type) {
	if t == nil {
		return nil, nil
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return reflect.TypeFor[int](), t.Elem()
	case reflect.Map:
		return t.Key(), t.Elem()
	default:
		return nil, nil
	}
}

// iterate calls fn for each element of coll. Map entries are visited in key
// order.
func iterate(coll any, fn func(key, elem any) error) error {
	if coll == nil {
		return nil
	}

	v := reflect.ValueOf(coll)

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := fn(i, v.Index(i).Interface()); err != nil {
				return err
			}
		}

	case reflect.Map:
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})

		for _, k := range keys {
			if err := fn(k.Interface(), v.MapIndex(k).Interface()); err != nil {
				return err
			}
		}

	default:
		return ErrExprEvaluate.With(
			slog.String("reason", "value is not iterable"),
			slog.String("type", v.Type().String()),
		)
	}

	return nil
}
