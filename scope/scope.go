package scope

import (
	"maps"
	"reflect"
)

// Indexer is the keyed accessor a host exposes so that variables without a
// native member can be stored on it.
type Indexer interface {
	Lookup(name string) (any, bool)
	Store(name string, value any)
}

// anyType is declared for values whose type cannot be inferred.
var anyType = reflect.TypeFor[any]()

// Scope is a keyed slot store with its declaration table.
//
// The zero value is not usable; create scopes with [New].
type Scope struct {
	slots map[string]any
	decls Declarations
}

// New returns an empty scope.
func New() *Scope {
	return &Scope{
		slots: map[string]any{},
		decls: Declarations{},
	}
}

// Lookup implements [Indexer].
func (s *Scope) Lookup(name string) (any, bool) {
	v, ok := s.slots[name]

	return v, ok
}

// Store implements [Indexer]. It does not touch the declaration table.
func (s *Scope) Store(name string, value any) {
	s.slots[name] = value
}

// Declarations implements [Declarer].
func (s *Scope) Declarations() Declarations {
	return s.decls
}

// Set stores value under name and declares name with the dynamic type of
// value. It is the entry point for variables declared outside templates.
func (s *Scope) Set(name string, value any) {
	t := anyType
	if value != nil {
		t = reflect.TypeOf(value)
	}

	s.slots[name] = value
	s.decls.Declare(name, t)
}

// Derive returns a copy of s taken now. Map, slice and array values are
// copied recursively, so later changes to either scope, including in-place
// changes to composite values, are not visible in the other.
func (s *Scope) Derive() *Scope {
	slots := make(map[string]any, len(s.slots))
	for name, v := range s.slots {
		slots[name] = deepCopy(v)
	}

	return &Scope{
		slots: slots,
		decls: s.decls.Clone(),
	}
}

// deepCopy returns a copy of v that shares no map, slice or array storage
// with it. Other values, pointers included, are returned as is.
func deepCopy(v any) any {
	switch v := v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return v
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = deepCopy(e)
		}

		return m
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = deepCopy(e)
		}

		return out
	}

	return copyValue(reflect.ValueOf(v)).Interface()
}

func copyValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}

		m := reflect.MakeMapWithSize(v.Type(), v.Len())
		for iter := v.MapRange(); iter.Next(); {
			m.SetMapIndex(iter.Key(), copyValue(iter.Value()))
		}

		return m

	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(copyValue(v.Index(i)))
		}

		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			out.Index(i).Set(copyValue(v.Index(i)))
		}

		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type()).Elem()
		out.Set(copyValue(v.Elem()))

		return out
	}

	return v
}

// Names returns the declared variable names in sorted order.
func (s *Scope) Names() []string {
	return s.decls.Names()
}

// Map returns the values of all declared variables. Declared names without a
// stored value map to the zero value of their type.
func (s *Scope) Map() map[string]any {
	m := make(map[string]any, len(s.decls))

	for name, t := range s.decls {
		if v, ok := s.slots[name]; ok {
			m[name] = v

			continue
		}

		m[name] = reflect.Zero(t).Interface()
	}

	return m
}

// Equal reports whether s and o hold the same declarations and values.
func (s *Scope) Equal(o *Scope) bool {
	if !maps.Equal(s.decls, o.decls) {
		return false
	}

	return maps.EqualFunc(s.slots, o.slots, reflect.DeepEqual)
}
