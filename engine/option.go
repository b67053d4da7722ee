package engine

import (
	"github.com/ardnew/stencil/bind"
	"github.com/ardnew/stencil/log"
)

// DefaultMaxPasses bounds the number of expansion passes.
const DefaultMaxPasses = 16

// Option configures an [Engine].
type Option func(*Engine)

// WithMaxPasses sets the maximum number of expansion passes, including the
// first. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxPasses = n
		}
	}
}

// WithDirective registers d, replacing any directive of the same name.
func WithDirective(d Directive) Option {
	return func(e *Engine) {
		e.register(d)
	}
}

// WithBinders adds binders tried before the default member and indexer
// binders.
func WithBinders(b ...bind.Binder) Option {
	return func(e *Engine) {
		e.binders = append(e.binders, b...)
	}
}

// WithEnviron sets the KEY=VALUE list read by the env() helper. The process
// environment is used by default.
func WithEnviron(environ []string) Option {
	return func(e *Engine) {
		e.environ = environ
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}
