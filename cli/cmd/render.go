package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stencil/hierarchy"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/scope"
)

// Render expands every template of a directory tree.
type Render struct {
	Dir string `arg:"" default:"." help:"Template root directory" type:"existingdir"`

	Target   string `help:"Write targets under this directory instead of beside their sources" short:"t" type:"path"`
	Suffix   string `default:".tmpl"                                                        help:"Template file suffix, empty selects every file"`
	Hidden   bool   `help:"Include hidden files and directories"`
	FailFast bool   `help:"Stop at the first file that fails"`
	DryRun   bool   `help:"Expand templates without writing targets"                        short:"n"`
	Dump     string `default:""                                                             enum:",yaml,json" help:"Print the final root scope (yaml, json)"`

	Decl Declare   `embed:""`
	Exp  Expansion `embed:""`
}

// Run builds the file hierarchy and processes it.
func (r *Render) Run(ctx context.Context) error {
	root, err := r.Decl.newScope(ctx)
	if err != nil {
		return err
	}

	opts := []hierarchy.Option{
		hierarchy.WithSuffix(r.Suffix),
		hierarchy.WithHidden(r.Hidden),
	}
	if r.Target != "" {
		opts = append(opts, hierarchy.WithTargetDir(r.Target))
	}

	node, err := hierarchy.FromDirectory(r.Dir, opts...)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "hierarchy built",
		slog.String("dir", r.Dir),
		slog.Int("files", node.Len()),
	)

	proc := hierarchy.NewProcessor[*scope.Scope](
		r.Exp.newEngine(),
		hierarchy.WithFailFast(r.FailFast),
		hierarchy.WithDryRun(r.DryRun),
		hierarchy.WithLogger(log.Default()),
	)

	final, err := proc.Process(ctx, node, root)
	if err != nil {
		return err
	}

	if r.Dump == "" {
		return nil
	}

	return dump(ctx, r.Dump, final)
}

// dump writes the variables of s in the given format.
func dump(ctx context.Context, format string, s *scope.Scope) error {
	var (
		b   []byte
		err error
	)

	switch format {
	case "json":
		b, err = json.MarshalIndent(s.Map(), "", "  ")
		b = append(b, '\n')
	default:
		b, err = yaml.Marshal(s.Map())
	}

	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", format))
	}

	if _, err := fmt.Fprint(stdout(ctx), string(b)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
