package engine

import "github.com/ardnew/stencil/pkg"

// Compile and expansion errors.
var (
	ErrSyntax              = pkg.NewError("syntax error")
	ErrUnknownDirective    = pkg.NewError("unknown directive")
	ErrUnexpectedArguments = pkg.NewError("directive does not take arguments")
	ErrMissingArguments    = pkg.NewError("directive requires arguments")
	ErrUnexpectedBody      = pkg.NewError("directive does not take a body")
	ErrMissingBody         = pkg.NewError("directive requires a non-empty body")
	ErrUnknownVariable     = pkg.NewError("unknown variable")
	ErrExprCompile         = pkg.NewError("invalid expression")
	ErrExprEvaluate        = pkg.NewError("expression evaluation failed")
	ErrPragma              = pkg.NewError("invalid pragma")
	ErrWrite               = pkg.NewError("write output")
)
