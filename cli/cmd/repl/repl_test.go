package repl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/stencil/engine"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/scope"
)

func testModel(t *testing.T) model {
	t.Helper()

	return newModel(
		context.Background(),
		engine.New(),
		scope.New(),
		NewHistory(filepath.Join(t.TempDir(), "history")),
		log.Logger{},
	)
}

func TestModel_ScopePersistsAcrossLines(t *testing.T) {
	m := testModel(t)

	if _, err := m.evaluate(`$$#define greeting = 'hello' /$$`); err != nil {
		t.Fatalf("define: %v", err)
	}

	out, err := m.evaluate(`$$ greeting $$, world`)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if out != "hello, world" {
		t.Errorf("evaluate = %q, want %q", out, "hello, world")
	}

	if !strings.Contains(m.vars(), "greeting") {
		t.Errorf("vars() = %q, want greeting listed", m.vars())
	}
}

func TestModel_ExecuteRecordsHistory(t *testing.T) {
	m := testModel(t)

	m.input.SetValue(`$$#define n = 1 /$$`)

	m, _ = m.execute()

	if m.input.Value() != "" {
		t.Errorf("input = %q after execute, want empty", m.input.Value())
	}

	if m.history.Len() != 1 || m.historyIdx != 1 {
		t.Fatalf("history len = %d, idx = %d, want 1, 1", m.history.Len(), m.historyIdx)
	}

	m = m.recall(-1)
	if m.input.Value() != `$$#define n = 1 /$$` {
		t.Errorf("recall = %q", m.input.Value())
	}

	m = m.recall(1)
	if m.input.Value() != "" {
		t.Errorf("recall past end = %q, want empty", m.input.Value())
	}
}

func TestModel_TabCycles(t *testing.T) {
	m := testModel(t)
	m.scope.Set("alpha", 1)
	m.scope.Set("alps", 2)

	m.input.SetValue("$$ al")
	m.input.CursorEnd()
	m.refresh()

	if len(m.matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(m.matches))
	}

	first := m.cycle(1)
	second := first.cycle(1)
	back := second.cycle(-1)

	if first.input.Value() == second.input.Value() {
		t.Errorf("cycle did not advance: %q", first.input.Value())
	}

	if back.input.Value() != first.input.Value() {
		t.Errorf("cycle(-1) = %q, want %q", back.input.Value(), first.input.Value())
	}
}

func TestModel_QuitOnEmptyCtrlD(t *testing.T) {
	m := testModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !next.(model).quitting || cmd == nil {
		t.Error("Ctrl+D on empty input did not quit")
	}
}

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history")
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a", "a", " "} {
		if err := h.Add(line); err != nil {
			t.Fatalf("Add(%q): %v", line, err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("history file: %v", err)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"b", "a"}
	if loaded.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", loaded.Len(), len(want))
	}

	for i, w := range want {
		if got, _ := loaded.Line(i); got != w {
			t.Errorf("Line(%d) = %q, want %q", i, got, w)
		}
	}

	if _, err := loaded.Line(len(want)); err != ErrOutOfBounds {
		t.Errorf("Line out of range error = %v", err)
	}
}

func TestModel_FailedLineKeepsScope(t *testing.T) {
	m := testModel(t)

	if _, err := m.evaluate(`$$#define kept = 1 /$$`); err != nil {
		t.Fatalf("define: %v", err)
	}

	_, err := m.evaluate(`$$#define lost = 2 /$$$$#literal$$$$ missing $$$$/literal$$`)
	if !errors.Is(err, engine.ErrUnknownVariable) {
		t.Fatalf("error = %v, want %v", err, engine.ErrUnknownVariable)
	}

	if _, ok := m.scope.Lookup("kept"); !ok {
		t.Error("kept was dropped")
	}

	if _, ok := m.scope.Declarations().Type("lost"); ok {
		t.Error("lost was declared by a failed line")
	}
}
