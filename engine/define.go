package engine

import (
	"log/slog"
	"strings"
)

// define declares a variable and assigns it the value of an expression:
//
//	$$#define name = expr /$$
type define struct{}

func (define) Spec() Spec {
	return Spec{Name: "define", Body: BodyNone, Args: ArgsRequired}
}

func (define) Compile(c *Compiler, seg *Segment) (Node, error) {
	name, src, err := splitAssign(seg.Args)
	if err != nil {
		return nil, err
	}

	// The right-hand side is bound before the assignment so that it sees
	// the previous declaration of name.
	x, err := c.Expr(src, seg.Pos)
	if err != nil {
		return nil, err
	}

	w, err := c.binder.BindWrite(c.host, name, x.Type())
	if err != nil {
		return nil, err
	}

	return func(f *Frame) error {
		v, err := x.Eval(f)
		if err != nil {
			return err
		}

		return w(f.host, v)
	}, nil
}

// splitAssign parses "name = expr".
func splitAssign(args string) (string, string, error) {
	name, rest := scanName(strings.TrimSpace(args))
	rest = strings.TrimSpace(rest)

	if name == "" || !strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, "==") {
		return "", "", ErrSyntax.With(
			slog.String("reason", "expected name = expression"),
			slog.String("args", args),
		)
	}

	src := strings.TrimSpace(rest[1:])
	if src == "" {
		return "", "", ErrSyntax.With(
			slog.String("reason", "missing expression"),
			slog.String("name", name),
		)
	}

	return name, src, nil
}

// identifier parses args as exactly one name.
func identifier(args string) (string, error) {
	name, rest := scanName(strings.TrimSpace(args))
	if name == "" || strings.TrimSpace(rest) != "" {
		return "", ErrSyntax.With(
			slog.String("reason", "expected a variable name"),
			slog.String("args", args),
		)
	}

	return name, nil
}
