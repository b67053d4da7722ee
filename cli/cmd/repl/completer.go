package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stencil/engine"
)

// commands are the session commands, entered with a leading ':'.
var commands = []string{"clear", "help", "quit", "vars"}

// isWordBoundary reports whether r delimits a completion word. Delimiters
// are whitespace, member access, the region delimiter, and expr-lang
// punctuation.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', '$', '#', ':',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ';', '\'', '"':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries in input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// wordContext classifies where a completion word appears.
type wordContext int

const (
	contextText      wordContext = iota // plain template text
	contextExpr                         // inside a $$ region
	contextDirective                    // a directive name after $$# or $$/
	contextMember                       // after a '.'
	contextCommand                      // a session command
)

// classify returns the context of the word starting at wordStart.
func classify(input string, wordStart int) wordContext {
	if wordStart == 1 && input[0] == ':' {
		return contextCommand
	}

	prefix := input[:wordStart]

	if strings.Count(prefix, engine.Delim)%2 == 0 {
		return contextText
	}

	switch {
	case strings.HasSuffix(prefix, engine.Delim+"#"),
		strings.HasSuffix(prefix, engine.Delim+"/"):
		return contextDirective
	case strings.HasSuffix(prefix, "."):
		return contextMember
	}

	return contextExpr
}

// candidates returns the completion candidates for the given context.
func candidates(ctx wordContext, e *engine.Engine, names []string) []string {
	switch ctx {
	case contextCommand:
		return commands
	case contextDirective:
		return e.Directives()
	case contextExpr:
		return slices.Concat(names, engine.Builtins())
	}

	return nil
}

// complete returns the ranked matches for the word at cursor and the
// boundaries of that word.
func complete(
	input string,
	cursor int,
	e *engine.Engine,
	names []string,
) (matches fuzzy.Matches, start, end int) {
	word, start, end := wordBounds(input, cursor)
	if word == "" {
		return nil, start, end
	}

	list := candidates(classify(input, start), e, names)
	if len(list) == 0 {
		return nil, start, end
	}

	return fuzzy.Find(word, list), start, end
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width.
func renderCandidateBar(
	matches fuzzy.Matches,
	selected int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == selected)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)
		}

		if i > 0 && i < len(matches)-1 && used+w+reserve > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders match with its matched characters highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
