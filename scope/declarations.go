package scope

import (
	"maps"
	"reflect"
	"slices"
)

// Declarations maps variable names to their inferred static types.
type Declarations map[string]reflect.Type

// Declarer is implemented by hosts that own a declaration table.
type Declarer interface {
	Declarations() Declarations
}

// Type returns the declared type of name.
func (d Declarations) Type(name string) (reflect.Type, bool) {
	t, ok := d[name]

	return t, ok
}

// Declare records (or overwrites) the type of name.
func (d Declarations) Declare(name string, t reflect.Type) {
	d[name] = t
}

// Remove deletes the declaration of name and reports whether it existed.
func (d Declarations) Remove(name string) bool {
	_, ok := d[name]
	delete(d, name)

	return ok
}

// Clone returns an independent copy of d.
func (d Declarations) Clone() Declarations {
	if d == nil {
		return Declarations{}
	}

	return maps.Clone(d)
}

// Replace makes d an exact copy of src.
func (d Declarations) Replace(src Declarations) {
	clear(d)
	maps.Copy(d, src)
}

// Names returns the declared names in sorted order.
func (d Declarations) Names() []string {
	return slices.Sorted(maps.Keys(d))
}
