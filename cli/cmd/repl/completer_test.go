package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/stencil/engine"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "path.ba", 7, "ba", 5, 7},
		{"after_delim", "$$fo", 4, "fo", 2, 4},
		{"after_directive_mark", "$$#def", 6, "def", 3, 6},
		{"after_closer_mark", "$$/lit", 6, "lit", 3, 6},
		{"after_plus", "$$ a + fo", 9, "fo", 7, 9},
		{"after_paren", "$$ env(fo", 9, "fo", 7, 9},
		{"in_quotes", "$$ env('HO", 10, "HO", 8, 10},
		{"empty_at_boundary", "$$ a + ", 7, "", 7, 7},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "foo", 10, "foo", 0, 3},
		{"command", ":qu", 3, "qu", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      wordContext
	}{
		{"text", "hello wor", 6, contextText},
		{"command", ":he", 1, contextCommand},
		{"expr", "$$ na", 3, contextExpr},
		{"directive", "$$#def", 3, contextDirective},
		{"closer", "$$#literal$$x$$/lit", 16, contextDirective},
		{"member", "$$ path.ba", 8, contextMember},
		{"after_region", "$$ a $$ b", 8, contextText},
		{"define_args", "$$#define x = na", 14, contextExpr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("classify(%q, %d) = %d, want %d",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	e := engine.New()
	names := []string{"project", "prefix"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"declared", "$$ proj", "project"},
		{"builtin", "$$ hostn", "hostname"},
		{"directive", "$$#lit", "literal"},
		{"command", ":vars", "vars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, _, _ := complete(tt.input, len(tt.input), e, names)
			if len(matches) == 0 {
				t.Fatalf("complete(%q) found nothing", tt.input)
			}

			if matches[0].Str != tt.want {
				t.Errorf("complete(%q)[0] = %q, want %q",
					tt.input, matches[0].Str, tt.want)
			}
		})
	}

	t.Run("text", func(t *testing.T) {
		matches, _, _ := complete("proj", 4, e, names)
		if len(matches) != 0 {
			t.Errorf("complete outside a region = %v, want none", matches)
		}
	})
}

func TestCandidates_Expr(t *testing.T) {
	got := candidates(contextExpr, engine.New(), []string{"zeta"})

	for _, want := range []string{"zeta", "env", "path", "file"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates missing %q", want)
		}
	}
}
