// Package engine compiles and expands stencil templates.
//
// # Syntax
//
// A template is plain text interleaved with regions opened and closed by the
// two-character delimiter "$$":
//
//	$$ expr $$                     expression output
//	$$#name args /$$               self-closing directive
//	$$#name args$$ body $$/name$$  directive with a body
//
// Expressions use the expr-lang grammar (https://expr-lang.org). Free
// identifiers resolve through a [bind.Chain]: exported fields of the host
// first, then variables declared on a host that implements [scope.Indexer],
// and finally the built-in helpers (env, file, path, mung, platform).
// Referencing a name none of these provide is a compile error.
//
// Bodies of the same directive name nest. Directives that opt out of body
// parsing (literal, comment) receive their body as raw text.
//
// # Directives
//
//	define name = expr    declare name with the type of expr and assign it
//	undef name            remove the declaration of name
//	literal               emit the body verbatim and defer it to a later pass
//	pragma dontprocess    copy the whole source through unchanged
//	pragma once [N]       bound re-expansion of the following literal
//	if expr ... else      conditional output
//	each [i,] v in expr   iterate a slice, array, or map
//	comment               discard the body
//
// # Generations
//
// [Engine.Expand] runs the template, then repeatedly re-expands the bodies
// emitted by literal directives. A literal preceded by "pragma once N" is
// re-expanded at most N-1 more times; a plain literal inherits the budget of
// the region that produced it (unbounded at the top level). Expansion stops
// when no deferred region remains or after [DefaultMaxPasses] passes.
package engine
