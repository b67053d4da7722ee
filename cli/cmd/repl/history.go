package repl

import (
	"bufio"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/stencil/pkg"
)

// ErrOutOfBounds is returned for a history index outside the recorded lines.
var ErrOutOfBounds = pkg.NewError("history index out of range")

// History is the list of entered lines, optionally persisted to a file.
type History struct {
	path  string
	lines []string
	mu    sync.RWMutex
}

// NewHistory returns a history persisted at path. An empty path keeps the
// history in memory.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the history with the lines of its file. A missing file is
// an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.lines = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		h.lines = append(h.lines, line)
	}

	return scanner.Err()
}

// Add appends line to the history. A line equal to an earlier entry moves
// that entry to the end.
func (h *History) Add(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return nil
	}

	i := slices.Index(h.lines, line)
	if i >= 0 {
		h.lines = slices.Delete(h.lines, i, i+1)
	}

	h.lines = append(h.lines, line)

	if h.path == "" {
		return nil
	}

	if i >= 0 {
		return h.rewrite()
	}

	err := pkg.MkdirFor(h.path)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(line + "\n")

	return err
}

// Line returns the line at index i, oldest first.
func (h *History) Line(i int) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.lines) {
		return "", ErrOutOfBounds
	}

	return h.lines[i], nil
}

// Len returns the number of lines.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.lines)
}

// rewrite must be called with h.mu held.
func (h *History) rewrite() error {
	var sb strings.Builder
	for _, line := range h.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	err := pkg.MkdirFor(h.path)
	if err != nil {
		return err
	}

	return os.WriteFile(h.path, []byte(sb.String()), 0o600)
}
