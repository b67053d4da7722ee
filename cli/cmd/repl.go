package cmd

import (
	"context"

	"github.com/ardnew/stencil/cli/cmd/repl"
	"github.com/ardnew/stencil/log"
)

// Repl starts an interactive session.
type Repl struct {
	History string `default:"${cache}/history.utf8" help:"History file, empty disables history" type:"path"`

	Decl Declare   `embed:""`
	Exp  Expansion `embed:""`
}

// Run expands each line entered against one persistent scope.
func (r *Repl) Run(ctx context.Context) error {
	s, err := r.Decl.newScope(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, r.Exp.newEngine(), s, r.History, log.Default())
}
