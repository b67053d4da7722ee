package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ardnew/stencil/bind"
	"github.com/ardnew/stencil/scope"
)

type testContext struct {
	*scope.Scope
	Project string
}

func newContext() *testContext {
	return &testContext{Scope: scope.New(), Project: "stencil"}
}

type plainContext struct {
	Name string
}

func expand(t *testing.T, e *Engine, src string, host any) string {
	t.Helper()

	out, err := e.Expand(context.Background(), src, host)
	if err != nil {
		t.Fatalf("Expand(%q): %v", src, err)
	}

	return out
}

func TestExpand_DefineAndRead(t *testing.T) {
	host := newContext()
	out := expand(t, New(), "$$#define foo = 'b' + 'ar' /$$[$$ foo $$]", host)

	if out != "[bar]" {
		t.Errorf("output = %q, want [bar]", out)
	}

	if v, _ := host.Lookup("foo"); v != "bar" {
		t.Errorf("foo = %v, want bar", v)
	}

	if typ, _ := host.Declarations().Type("foo"); typ != reflect.TypeFor[string]() {
		t.Errorf("foo declared as %v, want string", typ)
	}
}

func TestExpand_RedefineUsesPreviousValue(t *testing.T) {
	host := newContext()
	host.Set("n", 1)

	out := expand(t, New(), "$$#define n = n + 1 /$$$$#define n = n * 10 /$$$$ n $$", host)
	if out != "20" {
		t.Errorf("output = %q, want 20", out)
	}
}

func TestExpand_MemberBinding(t *testing.T) {
	host := newContext()
	out := expand(t, New(), "$$ Project $$/$$#define Project = 'next' /$$$$ Project $$", host)

	if out != "stencil/next" {
		t.Errorf("output = %q", out)
	}

	if host.Project != "next" {
		t.Errorf("Project = %q, want next", host.Project)
	}

	if _, ok := host.Declarations().Type("Project"); ok {
		t.Error("member write should not declare a keyed variable")
	}
}

func TestExpand_PragmaOnce(t *testing.T) {
	src := `
         $$#pragma once /$$
         $$#literal$$
            $$#define PragmaCount = PragmaCount + 1 /$$
            count = $$ PragmaCount $$
         $$/literal$$
         `

	out := expand(t, New(), src, newContext())

	if !strings.Contains(out, "$$#define") {
		t.Errorf("output lost the deferred define:\n%s", out)
	}

	for _, marker := range []string{"#literal", "#pragma"} {
		if strings.Contains(out, marker) {
			t.Errorf("output still contains %s:\n%s", marker, out)
		}
	}
}

func TestExpand_PragmaOnceTwo(t *testing.T) {
	src := `
         $$#pragma once 2 /$$
         $$#literal$$
            $$#define foo = 'b' + 'ar' /$$
            $$ foo $$ 
         $$/literal$$
         `

	out := expand(t, New(), src, newContext())

	if !strings.Contains(out, "bar") || strings.Contains(out, "$$") {
		t.Errorf("output = %q, want expanded bar", out)
	}
}

func TestExpand_ResolvedOutputIsStable(t *testing.T) {
	src := "$$#pragma once 2 /$$$$#literal$$$$#define v = 'x' + 'y' /$$<$$ v $$>$$/literal$$"

	var outs []string

	for _, n := range []int{2, 3, DefaultMaxPasses} {
		out := expand(t, New(WithMaxPasses(n)), src, newContext())
		outs = append(outs, out)
	}

	for _, out := range outs {
		if out != "<xy>" {
			t.Errorf("output = %q, want <xy>", out)
		}
	}

	again := expand(t, New(), outs[0], newContext())
	if again != outs[0] {
		t.Errorf("re-expansion changed output: %q -> %q", outs[0], again)
	}
}

func TestExpand_DontProcessCopiesInput(t *testing.T) {
	src := "\n         $$#pragma dontprocess /$$\n         $$# dodgy $$$ $$\n         "

	out := expand(t, New(), src, newContext())
	if out != src {
		t.Errorf("output = %q, want input unchanged", out)
	}
}

func TestTemplate_LiteralIsOpaque(t *testing.T) {
	host := newContext()
	body := " $$#define x = 1 /$$ $$ undefined $$ "

	tmpl, err := New().Compile("$$#literal$$"+body+"$$/literal$$", host)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(host, &sb); err != nil {
		t.Fatal(err)
	}

	if sb.String() != body {
		t.Errorf("output = %q, want %q", sb.String(), body)
	}

	if _, ok := host.Declarations().Type("x"); ok {
		t.Error("literal body was compiled")
	}
}

func TestExpand_PlainLiteralIsExpandedLater(t *testing.T) {
	src := "$$#literal$$$$#define x = 1 /$$x=$$ x $$$$/literal$$"

	if out := expand(t, New(), src, newContext()); out != "x=1" {
		t.Errorf("output = %q, want x=1", out)
	}

	out := expand(t, New(WithMaxPasses(1)), src, newContext())
	if out != "$$#define x = 1 /$$x=$$ x $$" {
		t.Errorf("single pass output = %q", out)
	}
}

func TestExpand_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Expand(ctx, "$$#literal$$ $$ 1 $$ $$/literal$$", newContext())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		host any
		want error
	}{
		{"unknown directive", "$$#defne x = 1 /$$", newContext(), ErrUnknownDirective},
		{"literal arguments", "$$#literal x$$body$$/literal$$", newContext(), ErrUnexpectedArguments},
		{"literal empty", "$$#literal$$  $$/literal$$", newContext(), ErrMissingBody},
		{"literal self-closing", "$$#literal /$$", newContext(), ErrMissingBody},
		{"define body", "$$#define x = 1$$body$$/define$$", newContext(), ErrUnexpectedBody},
		{"define without arguments", "$$#define /$$", newContext(), ErrMissingArguments},
		{"define malformed", "$$#define x == 1 /$$", newContext(), ErrSyntax},
		{"unknown variable", "$$ nope $$", newContext(), ErrUnknownVariable},
		{"bad expression", "$$ 1 + $$", newContext(), ErrExprCompile},
		{"type error", "$$#define s = 'a' /$$$$ s * 2 $$", newContext(), ErrExprCompile},
		{"pragma keyword", "$$#pragma twice /$$", newContext(), ErrPragma},
		{"pragma zero", "$$#pragma once 0 /$$$$#literal$$x$$/literal$$", newContext(), ErrPragma},
		{"pragma numeral", "$$#pragma once two /$$$$#literal$$x$$/literal$$", newContext(), ErrPragma},
		{"pragma extra", "$$#pragma once 1 2 /$$$$#literal$$x$$/literal$$", newContext(), ErrPragma},
		{"once before define", "$$#pragma once /$$$$#define x = 1 /$$", newContext(), ErrPragma},
		{"once at end", "text $$#pragma once /$$ text", newContext(), ErrPragma},
		{"dontprocess not first", "$$#define x = 1 /$$$$#pragma dontprocess /$$", newContext(), ErrPragma},
		{"else outside if", "$$#else/$$", newContext(), ErrSyntax},
		{"undef undeclared", "$$#undef x /$$", newContext(), bind.ErrUnboundVariable},
		{"undef twice", "$$#define x = 1 /$$$$#undef x /$$$$#undef x /$$", newContext(), bind.ErrUnboundVariable},
		{"missing indexer", "$$#define x = 1 /$$", &plainContext{}, bind.ErrMissingIndexer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Compile(tt.src, tt.host)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompile_UnknownDirectiveSuggests(t *testing.T) {
	_, err := New().Compile("$$#defne x = 1 /$$", newContext())
	if err == nil || !strings.Contains(err.Error(), "define") {
		t.Errorf("err = %v, want suggestion of define", err)
	}
}

func TestExecute_FailureDoesNotDeclare(t *testing.T) {
	host := newContext()

	tmpl, err := New().Compile("$$#define x = 1 /$$$$ file.read('/nonexistent/stencil') $$", host)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(host, &sb); !errors.Is(err, ErrExprEvaluate) {
		t.Fatalf("err = %v, want ErrExprEvaluate", err)
	}

	if _, ok := host.Declarations().Type("x"); ok {
		t.Error("failed template committed its declarations")
	}
}

func TestExecute_ContextTypeMismatch(t *testing.T) {
	tmpl, err := New().Compile("$$ Name $$", &plainContext{})
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(newContext(), &sb); !errors.Is(err, ErrContextType) {
		t.Errorf("err = %v, want ErrContextType", err)
	}
}

func TestExpand_Conditional(t *testing.T) {
	tests := []struct {
		flag bool
		want string
	}{
		{true, "yes"},
		{false, "no"},
	}

	for _, tt := range tests {
		host := newContext()
		host.Set("flag", tt.flag)

		out := expand(t, New(), "$$#if flag$$yes$$#else/$$no$$/if$$", host)
		if out != tt.want {
			t.Errorf("flag=%v: output = %q, want %q", tt.flag, out, tt.want)
		}
	}
}

func TestExpand_Each(t *testing.T) {
	host := newContext()
	host.Set("items", []any{"a", "b"})
	host.Set("m", map[string]int{"b": 2, "a": 1})
	host.Set("it", "keep")

	out := expand(t, New(),
		"$$#each it in items$$[$$ it $$]$$/each$$ $$#each k, v in m$$$$ k $$=$$ v $$;$$/each$$ $$ it $$",
		host)

	if out != "[a][b] a=1;b=2; keep" {
		t.Errorf("output = %q", out)
	}

	if typ, _ := host.Declarations().Type("it"); typ != reflect.TypeFor[string]() {
		t.Errorf("it declared as %v after loop, want string", typ)
	}

	for _, name := range []string{"k", "v"} {
		if _, ok := host.Declarations().Type(name); ok {
			t.Errorf("loop variable %s still declared", name)
		}
	}
}

func TestExpand_UndefRemovesDeclaration(t *testing.T) {
	host := newContext()
	expand(t, New(), "$$#define x = 1 /$$$$#undef x /$$", host)

	if _, ok := host.Declarations().Type("x"); ok {
		t.Error("x still declared")
	}
}

func TestExpand_Builtins(t *testing.T) {
	e := New(WithEnviron([]string{"STENCIL_HOME=/opt/stencil"}))

	tests := []struct {
		src  string
		want string
	}{
		{"$$ env('STENCIL_HOME') $$", "/opt/stencil"},
		{"$$ env('UNSET') $$", ""},
		{"$$ path.cat('a', 'b') $$", "a/b"},
		{"$$ path.base('/x/y.tmpl') $$", "y.tmpl"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if out := expand(t, e, tt.src, newContext()); out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestExpand_HostShadowsBuiltin(t *testing.T) {
	host := newContext()
	host.Set("hostname", "configured")

	if out := expand(t, New(), "$$ hostname $$", host); out != "configured" {
		t.Errorf("output = %q, want configured", out)
	}
}

func TestExpand_CommentDiscardsBody(t *testing.T) {
	out := expand(t, New(), "a$$#comment$$ $$ not parsed $$$$/comment$$b", newContext())
	if out != "ab" {
		t.Errorf("output = %q, want ab", out)
	}
}

func TestExpand_LaterPassFailureKeepsEarlierCommits(t *testing.T) {
	host := newContext()

	_, err := New().Expand(context.Background(),
		"$$#define x = 1 /$$$$#literal$$$$ missing $$$$/literal$$", host)
	if !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("error = %v, want %v", err, ErrUnknownVariable)
	}

	if _, ok := host.Declarations().Type("x"); !ok {
		t.Error("x not declared; the first pass commits before the second runs")
	}
}
