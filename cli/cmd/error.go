package cmd

import "github.com/ardnew/stencil/pkg"

// Command errors.
var (
	ErrReadSource  = pkg.NewError("read source")
	ErrWriteOutput = pkg.NewError("write output")
	ErrMarshal     = pkg.NewError("marshal scope")
	ErrDeclare     = pkg.NewError("declare variables")
)
