package engine

import (
	"log/slog"
	"strconv"
	"strings"
)

const (
	pragmaName        = "pragma"
	pragmaDontProcess = "dontprocess"
	pragmaOnce        = "once"
)

// pragma controls how the surrounding source is processed.
//
//	$$#pragma dontprocess /$$  (first directive only) copy source unchanged
//	$$#pragma once [N] /$$     expand the next literal at most N-1 more times
type pragma struct{}

func (pragma) Spec() Spec {
	return Spec{Name: pragmaName, Body: BodyNone, Args: ArgsRequired}
}

func (pragma) Compile(c *Compiler, seg *Segment) (Node, error) {
	args := strings.Fields(seg.Args)
	keyword := slog.String("keyword", args[0])

	switch args[0] {
	case pragmaDontProcess:
		if len(args) > 1 {
			return nil, ErrPragma.With(keyword, slog.String("reason", "unexpected arguments"))
		}

		// A leading dontprocess never reaches the compiler.
		return nil, ErrPragma.With(keyword, slog.String("reason", "must be the first directive"))

	case pragmaOnce:
		count := 1

		switch len(args) {
		case 1:
		case 2:
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return nil, ErrPragma.With(
					keyword,
					slog.String("reason", "count must be a positive integer"),
					slog.String("count", args[1]),
				)
			}

			count = n

		default:
			return nil, ErrPragma.With(keyword, slog.String("reason", "unexpected arguments"))
		}

		c.once = &pendingOnce{count: count, pos: seg.Pos}

		return Nop, nil

	default:
		return nil, ErrPragma.With(keyword, slog.String("reason", "unknown keyword"))
	}
}
