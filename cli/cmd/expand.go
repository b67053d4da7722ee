package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/stencil/pkg"
)

// Expand expands a single template.
type Expand struct {
	Source string `arg:"" default:"-" help:"Template file or '-' for stdin"`
	Output string `help:"Write to this file instead of stdout" short:"o" type:"path"`

	Decl Declare   `embed:""`
	Exp  Expansion `embed:""`
}

// Run expands the source against a scope seeded from the declaration flags.
func (x *Expand) Run(ctx context.Context) error {
	s, err := x.Decl.newScope(ctx)
	if err != nil {
		return err
	}

	src, err := readSource(x.Source)
	if err != nil {
		return err
	}

	out, err := x.Exp.newEngine().Expand(ctx, string(src), s)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("file", x.Source))
	}

	if x.Output != "" {
		if err := pkg.WriteFile(x.Output, []byte(out)); err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("file", x.Output))
		}

		return nil
	}

	if _, err := io.WriteString(stdout(ctx), out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
