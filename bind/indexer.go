package bind

import (
	"log/slog"
	"reflect"

	"github.com/ardnew/stencil/pkg"
	"github.com/ardnew/stencil/scope"
)

var indexerType = reflect.TypeFor[scope.Indexer]()

// Indexer binds declared names to keyed slots on hosts that implement
// [scope.Indexer].
//
// Writes always succeed in claiming a name: they record the static type of
// the written value in the declaration table, which makes subsequent reads
// of the name resolve here.
type Indexer struct {
	decls scope.Declarations
}

// NewIndexer returns an Indexer that tracks types in decls.
func NewIndexer(decls scope.Declarations) *Indexer {
	if decls == nil {
		decls = scope.Declarations{}
	}

	return &Indexer{decls: decls}
}

// Declarations returns the table the binder reads and writes.
func (b *Indexer) Declarations() scope.Declarations { return b.decls }

func (b *Indexer) check(host reflect.Type) error {
	if host == nil || !host.Implements(indexerType) {
		return ErrMissingIndexer.With(slog.String("context", typeName(host)))
	}

	return nil
}

func indexerOf(h reflect.Value) (scope.Indexer, error) {
	if !h.IsValid() || (h.Kind() == reflect.Pointer && h.IsNil()) {
		return nil, ErrNilHost
	}

	idx, ok := h.Interface().(scope.Indexer)
	if !ok {
		return nil, ErrMissingIndexer.With(slog.String("context", h.Type().String()))
	}

	return idx, nil
}

// BindRead implements [Binder]. Undeclared names are not owned.
func (b *Indexer) BindRead(host reflect.Type, name string) (*Read, error) {
	t, ok := b.decls.Type(name)
	if !ok {
		return nil, nil
	}

	err := b.check(host)
	if err != nil {
		return nil, err
	}

	return &Read{
		Type: t,
		Get: func(h reflect.Value) (any, error) {
			idx, err := indexerOf(h)
			if err != nil {
				return nil, err
			}

			v, _ := idx.Lookup(name)

			cv, err := Convert(v, t)
			if err != nil {
				return nil, pkg.WrapError(err).With(slog.String("name", name))
			}

			return cv.Interface(), nil
		},
	}, nil
}

// BindWrite implements [Binder]. It declares name with type t (or any, when
// t is nil) and compiles a converting store.
func (b *Indexer) BindWrite(host reflect.Type, name string, t reflect.Type) (Write, error) {
	err := b.check(host)
	if err != nil {
		return nil, err
	}

	if t == nil {
		t = anyType
	}

	b.decls.Declare(name, t)

	return func(h reflect.Value, value any) error {
		idx, err := indexerOf(h)
		if err != nil {
			return err
		}

		cv, err := Convert(value, t)
		if err != nil {
			return pkg.WrapError(err).With(slog.String("name", name))
		}

		idx.Store(name, cv.Interface())

		return nil
	}, nil
}

// Unbind implements [Binder]. It removes the declaration of name; the stored
// slot value is left in place.
func (b *Indexer) Unbind(_ reflect.Type, name string) (Exec, error) {
	if !b.decls.Remove(name) {
		return nil, ErrUnboundVariable.With(slog.String("name", name))
	}

	return func(reflect.Value) error { return nil }, nil
}
