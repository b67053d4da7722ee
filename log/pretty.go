package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the lipgloss styles used by prettyTextHandler.
type palette struct {
	key    lipgloss.Style
	str    lipgloss.Style
	num    lipgloss.Style
	yes    lipgloss.Style
	no     lipgloss.Style
	time   lipgloss.Style
	msg    lipgloss.Style
	levels map[slog.Level]lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		key:  r.NewStyle().Foreground(lipgloss.Color("8")),
		str:  r.NewStyle().Foreground(lipgloss.Color("6")),
		num:  r.NewStyle().Foreground(lipgloss.Color("3")),
		yes:  r.NewStyle().Foreground(lipgloss.Color("2")),
		no:   r.NewStyle().Foreground(lipgloss.Color("1")),
		time: r.NewStyle().Foreground(lipgloss.Color("4")),
		msg:  r.NewStyle().Bold(true),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): r.NewStyle().Foreground(lipgloss.Color("5")),
			slog.LevelDebug:        r.NewStyle().Foreground(lipgloss.Color("4")),
			slog.LevelInfo:         r.NewStyle().Foreground(lipgloss.Color("2")),
			slog.LevelWarn:         r.NewStyle().Foreground(lipgloss.Color("3")),
			slog.LevelError:        r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return p.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return p.levels[slog.LevelInfo]
	case l >= slog.LevelDebug:
		return p.levels[slog.LevelDebug]
	default:
		return p.levels[slog.Level(LevelTrace)]
	}
}

// prettyTextHandler implements a styled text handler for log messages.
type prettyTextHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	style      palette
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	groups     []string
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts:       *opts,
		formatTime: formatTime,
		style:      makePalette(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(h.style.time.Render(ts))
			buf.WriteByte(' ')
		}
	}

	level := strings.ToUpper(Level(r.Level).String())
	buf.WriteString(h.style.level(r.Level).Render(fmt.Sprintf("%-5s", level)))
	buf.WriteByte(' ')

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			buf.WriteString(h.style.key.Render(src.File + ":" + strconv.Itoa(src.Line)))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.style.msg.Render(r.Message))

	prefix := strings.Join(h.groups, ".")

	for _, a := range h.attrs {
		h.writeAttr(buf, prefix, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, key, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(key + "="))
	h.writeValue(buf, a.Value)
}

func (h *prettyTextHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindInt64:
		buf.WriteString(h.style.num.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(h.style.num.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(h.style.yes.Render("true"))
		} else {
			buf.WriteString(h.style.no.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(h.style.num.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(h.style.time.Render(v.Time().Format(time.RFC3339)))

	default:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		buf.WriteString(h.style.str.Render(s))
	}
}
