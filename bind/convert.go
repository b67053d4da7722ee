package bind

import (
	"log/slog"
	"reflect"
)

// anyType is the declared type of values whose static type is unknown.
var anyType = reflect.TypeFor[any]()

// Convert converts v to a value of type t.
//
// Numeric kinds convert freely among themselves. Conversions that reflect
// permits but that change meaning (integer to string) are rejected.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		t = anyType
	}

	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)

	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)

		return out, nil
	}

	if Compatible(rv.Type(), t) && rv.CanConvert(t) {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, ErrTypeMismatch.With(
		slog.String("from", rv.Type().String()),
		slog.String("to", t.String()),
	)
}

// Compatible reports whether a value of static type from may be converted to
// type to. An unknown (nil or interface) from type is always compatible;
// the check is deferred to [Convert].
func Compatible(from, to reflect.Type) bool {
	if from == nil || to == nil || from.Kind() == reflect.Interface {
		return true
	}

	if from.AssignableTo(to) {
		return true
	}

	if isNumeric(from) && isNumeric(to) {
		return true
	}

	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}

	return from.ConvertibleTo(to)
}

func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
