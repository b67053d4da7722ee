package pkg

import (
	"errors"
	"log/slog"
	"strings"
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer.
//
// Sentinel values are declared with [NewError] and specialized with
// [Error.With] and [Error.Wrap]. Every specialization still matches its
// sentinel with [errors.Is].
type Error struct {
	msg   string
	err   error       // wrapped cause
	attrs []slog.Attr // attributes for structured logging
	root  *Error      // sentinel this error was derived from
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error. An error that already is
// (or wraps) an *Error is returned unchanged.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> [k=v ...]: <err>"
	//   2. "<msg> [k=v ...]"
	//   3. "<err>"
	part := make([]string, 0, 2)

	if e.msg != "" {
		head := e.msg
		if len(e.attrs) > 0 {
			head += " [" + formatAttrs(e.attrs) + "]"
		}

		part = append(part, head)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.root != nil && e.root == t.sentinel())
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns a copy of the attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		root:  e.sentinel(),
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		root:  e.sentinel(),
	}
}

func (e *Error) sentinel() *Error {
	if e.root != nil {
		return e.root
	}

	return e
}

func formatAttrs(attrs []slog.Attr) string {
	var sb strings.Builder

	for i, a := range attrs {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(a.Key)
		sb.WriteByte('=')

		if a.Value.Kind() == slog.KindGroup {
			sb.WriteString(formatAttrs(a.Value.Group()))

			continue
		}

		sb.WriteString(a.Value.String())
	}

	return sb.String()
}
