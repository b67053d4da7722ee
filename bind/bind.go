// Package bind resolves free variable names in templates to storage
// locations on a host value.
//
// A [Binder] is asked, at compile time, whether it owns a name on a given
// host type. If it does, it returns a small closure that performs the read,
// write, or unbind at execution time against a concrete host value. Binders
// are consulted in order through a [Chain]; the first binder that claims a
// name wins.
//
// Two binders are provided. [Member] maps names to exported struct fields of
// the host. [Indexer] maps any declared name to a keyed slot on a host that
// implements [scope.Indexer], and records the static type of every value
// written through it in a [scope.Declarations] table.
package bind

import (
	"log/slog"
	"reflect"

	"github.com/ardnew/stencil/pkg"
)

// Binding errors.
var (
	ErrMissingIndexer  = pkg.NewError("context type declares variables but provides no indexer")
	ErrUnboundVariable = pkg.NewError("variable cannot be unset because it has not been set")
	ErrTypeMismatch    = pkg.NewError("value type does not match variable type")
	ErrNotWritable     = pkg.NewError("variable is not writable")
	ErrNilHost         = pkg.NewError("nil context")
)

// Read is a compiled variable read.
type Read struct {
	// Type is the static type of the value returned by Get.
	Type reflect.Type
	Get  func(host reflect.Value) (any, error)
}

// Write is a compiled variable assignment.
type Write func(host reflect.Value, value any) error

// Exec is a compiled side effect with no value.
type Exec func(host reflect.Value) error

// Binder resolves names on a host type.
//
// Each method returns nil results and a nil error when the binder does not
// own name, so that a [Chain] can try the next binder.
type Binder interface {
	BindRead(host reflect.Type, name string) (*Read, error)
	BindWrite(host reflect.Type, name string, t reflect.Type) (Write, error)
	Unbind(host reflect.Type, name string) (Exec, error)
}

// Chain tries each binder in order.
type Chain []Binder

// Default returns the standard chain: direct members first, then the keyed
// accessor over decls.
func Default(decls map[string]reflect.Type) Chain {
	return Chain{Member{}, NewIndexer(decls)}
}

// BindRead returns the read compiled by the first binder that owns name, or
// nil if no binder does.
func (c Chain) BindRead(host reflect.Type, name string) (*Read, error) {
	for _, b := range c {
		r, err := b.BindRead(host, name)
		if err != nil || r != nil {
			return r, err
		}
	}

	return nil, nil
}

// BindWrite returns the write compiled by the first binder that owns name.
// It fails with [ErrNotWritable] if no binder accepts the name.
func (c Chain) BindWrite(host reflect.Type, name string, t reflect.Type) (Write, error) {
	for _, b := range c {
		w, err := b.BindWrite(host, name, t)
		if err != nil || w != nil {
			return w, err
		}
	}

	return nil, ErrNotWritable.With(
		slog.String("name", name),
		slog.String("context", typeName(host)),
	)
}

// Unbind returns the unbind compiled by the first binder that owns name.
// It fails with [ErrUnboundVariable] if no binder owns the name.
func (c Chain) Unbind(host reflect.Type, name string) (Exec, error) {
	for _, b := range c {
		e, err := b.Unbind(host, name)
		if err != nil || e != nil {
			return e, err
		}
	}

	return nil, ErrUnboundVariable.With(slog.String("name", name))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	return t.String()
}
