package engine

import (
	"log/slog"
	"strings"

	"github.com/ardnew/stencil/pkg"
)

// Pos is a location in template source.
type Pos struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in bytes
}

func posAt(src string, offset int) Pos {
	offset = min(max(offset, 0), len(src))
	head := src[:offset]
	line := strings.Count(head, "\n") + 1
	col := offset - strings.LastIndexByte(head, '\n')

	return Pos{Offset: offset, Line: line, Column: col}
}

// Attrs returns the position as log attributes.
func (p Pos) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	}
}

// at attaches p to err unless err already carries a position.
func at(err error, p Pos) error {
	if err == nil {
		return nil
	}

	e := pkg.WrapError(err)
	for _, a := range e.Attrs() {
		if a.Key == "line" {
			return e
		}
	}

	return e.With(p.Attrs()...)
}
