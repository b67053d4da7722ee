// Package repl implements the interactive stencil session.
//
// Each entered line is expanded as a template against one scope that lives
// for the whole session, so definitions made on one line are visible to the
// next. Lines starting with ':' are session commands.
package repl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/stencil/engine"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/scope"
)

const prompt = "» "

func helpMessage() string {
	return `
Enter template text to expand it, e.g.:

  $$#define name = 'world' /$$
  hello, $$ name $$

Commands:

  :help    Print this message
  :vars    List declared variables
  :clear   Clear screen
  :quit    Exit

Tab / Shift-Tab cycle completions, Up / Down walk the history.
Press Ctrl+C on an empty line or Ctrl+D to exit.
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

const defaultWidth = 80

// model is the Bubble Tea model for the session.
type model struct {
	ctx        context.Context
	engine     *engine.Engine
	scope      *scope.Scope
	history    *History
	historyIdx int
	logger     log.Logger
	input      textinput.Model
	matches    fuzzy.Matches
	wordStart  int
	wordEnd    int
	selected   int
	tabActive  bool
	preTab     string
	width      int
	quitting   bool
}

// Run starts an interactive session expanding lines with e against s.
// Lines are persisted to historyPath unless it is empty.
func Run(
	ctx context.Context,
	e *engine.Engine,
	s *scope.Scope,
	historyPath string,
	logger log.Logger,
) error {
	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("entries", history.Len()),
		slog.Int("declared", len(s.Names())),
	)

	p := tea.NewProgram(newModel(ctx, e, s, history, logger), tea.WithContext(ctx))
	_, err := p.Run()

	return err
}

func newModel(
	ctx context.Context,
	e *engine.Engine,
	s *scope.Scope,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.TextStyle = inputStyle
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		engine:     e,
		scope:      s,
		history:    history,
		historyIdx: history.Len(),
		logger:     logger,
		input:      ti,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Enter template text, :help for commands"))
	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.selected, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive {
			m.tabActive = false
			m.refresh()

			return m, nil
		}

		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(-1), nil

	case tea.KeyDown:
		return m.recall(1), nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.tabActive = false
	m.refresh()

	return m, cmd
}

// refresh recomputes the completion matches for the current input.
func (m *model) refresh() {
	m.matches, m.wordStart, m.wordEnd = complete(
		m.input.Value(), m.input.Position(), m.engine, m.scope.Names(),
	)
	m.selected = 0
}

// cycle moves the completion selection by step and inserts the selected
// candidate in place of the current word.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTab = m.input.Value()
		m.selected = 0

		if step < 0 {
			m.selected = len(m.matches) - 1
		}
	} else {
		m.selected = (m.selected + step + len(m.matches)) % len(m.matches)
	}

	word := m.matches[m.selected].Str
	text := m.preTab[:m.wordStart] + word + m.preTab[m.wordEnd:]

	m.input.SetValue(text)
	m.input.SetCursor(m.wordStart + len(word))

	return m
}

// recall replaces the input with the history line step entries away.
func (m model) recall(step int) model {
	idx := m.historyIdx + step
	if idx < 0 || idx > m.history.Len() {
		return m
	}

	m.historyIdx = idx

	line, err := m.history.Line(idx)
	if err != nil {
		line = ""
	}

	m.input.SetValue(line)
	m.input.CursorEnd()
	m.tabActive = false
	m.matches = nil

	return m
}

// execute runs the current input and prints its result above the prompt.
func (m model) execute() (model, tea.Cmd) {
	line := m.input.Value()

	m.input.SetValue("")
	m.matches = nil

	if strings.TrimSpace(line) == "" {
		return m, nil
	}

	if err := m.history.Add(line); err != nil {
		m.logger.WarnContext(m.ctx, "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	if name, ok := strings.CutPrefix(strings.TrimSpace(line), ":"); ok {
		switch name {
		case "quit", "q", "exit":
			m.quitting = true

			return m, tea.Sequence(echo, tea.Quit)
		case "clear":
			return m, tea.ClearScreen
		case "help":
			return m, tea.Sequence(echo, tea.Println(hintStyle.Render(helpMessage())))
		case "vars":
			return m, tea.Sequence(echo, tea.Println(m.vars()))
		}

		return m, tea.Sequence(echo,
			tea.Println(errorStyle.Render("unknown command: "+name)))
	}

	out, err := m.evaluate(line)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
	}

	if out == "" {
		return m, echo
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// evaluate expands line against a copy of the session scope. The copy
// replaces the session scope only when the line expands without error.
func (m *model) evaluate(line string) (string, error) {
	m.logger.TraceContext(m.ctx, "repl expand", slog.String("line", line))

	trial := m.scope.Derive()

	out, err := m.engine.Expand(m.ctx, line, trial)
	if err != nil {
		return "", err
	}

	m.scope = trial

	return out, nil
}

// vars formats the declared variables, one per line.
func (m model) vars() string {
	names := m.scope.Names()
	if len(names) == 0 {
		return hintStyle.Render("(none)")
	}

	values := m.scope.Map()
	decls := m.scope.Declarations()

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s %s = %v",
			suggestionStyle.Render(name),
			hintStyle.Render(decls[name].String()),
			values[name],
		))
	}

	return strings.Join(lines, "\n")
}
