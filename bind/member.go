package bind

import (
	"log/slog"
	"reflect"
)

// Member binds names to exported, non-embedded fields of a struct host.
// Writes require a pointer-to-struct host.
type Member struct{}

func lookupField(host reflect.Type, name string) (reflect.StructField, bool) {
	if host == nil {
		return reflect.StructField{}, false
	}

	t := host
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}

	f, ok := t.FieldByName(name)
	if !ok || !f.IsExported() || f.Anonymous {
		return reflect.StructField{}, false
	}

	return f, true
}

func fieldOf(host reflect.Value, f reflect.StructField) (reflect.Value, error) {
	v := host
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, ErrNilHost
		}

		v = v.Elem()
	}

	return v.FieldByIndexErr(f.Index)
}

// BindRead implements [Binder].
func (Member) BindRead(host reflect.Type, name string) (*Read, error) {
	f, ok := lookupField(host, name)
	if !ok {
		return nil, nil
	}

	return &Read{
		Type: f.Type,
		Get: func(h reflect.Value) (any, error) {
			fv, err := fieldOf(h, f)
			if err != nil {
				return nil, err
			}

			return fv.Interface(), nil
		},
	}, nil
}

// BindWrite implements [Binder].
func (Member) BindWrite(host reflect.Type, name string, t reflect.Type) (Write, error) {
	f, ok := lookupField(host, name)
	if !ok {
		return nil, nil
	}

	if host.Kind() != reflect.Pointer {
		return nil, ErrNotWritable.With(
			slog.String("name", name),
			slog.String("context", host.String()),
		)
	}

	if !Compatible(t, f.Type) {
		return nil, ErrTypeMismatch.With(
			slog.String("name", name),
			slog.String("from", typeName(t)),
			slog.String("to", f.Type.String()),
		)
	}

	return func(h reflect.Value, value any) error {
		fv, err := fieldOf(h, f)
		if err != nil {
			return err
		}

		cv, err := Convert(value, f.Type)
		if err != nil {
			return err
		}

		fv.Set(cv)

		return nil
	}, nil
}

// Unbind implements [Binder]. Fields cannot be unbound, so Member never owns
// an unbind.
func (Member) Unbind(reflect.Type, string) (Exec, error) {
	return nil, nil
}
