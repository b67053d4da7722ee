package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.Level())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}

	if logger.Format() != FormatText {
		t.Errorf("expected default format text, got %v", logger.Format())
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelError), WithPretty(false))
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Errorf("info message logged when level is Error: %q", buf.String())
	}

	logger.Error("error message")

	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Trace_RendersTraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON))
	logger.Trace("pass started", slog.Int("pass", 2))

	var rec map[string]any

	err := json.Unmarshal(buf.Bytes(), &rec)
	if err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}

	if rec["pass"] != float64(2) {
		t.Errorf("pass = %v, want 2", rec["pass"])
	}
}

func TestLogger_ZeroValueDiscards(t *testing.T) {
	var logger Logger

	// must not panic
	logger.Info("ignored")
	logger.With(slog.String("k", "v")).Error("ignored")
}

func TestLogger_PrettyText_IncludesAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none")).
		With(slog.String("component", "engine"))
	logger.Info("file processed", slog.String("path", "a/b.txt"), slog.Bool("ok", true))

	out := buf.String()
	for _, want := range []string{"INFO", "file processed", "component=", "engine", "path=", "a/b.txt", "ok="} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat(" JSON ") != FormatJSON {
		t.Error("expected JSON")
	}

	if ParseFormat("text") != FormatText {
		t.Error("expected text")
	}

	if ParseFormat("xml") != DefaultFormat {
		t.Error("expected default format for unknown input")
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"rfc3339 named layout", "RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339 nano named layout", "RFC3339Nano", "2023-10-15T14:30:45.123456789Z"},
		{"custom layout", "2006-01-02", "2023-10-15"},
		{"none disables", "none", ""},
		{"empty disables", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})
			if got := c.formatTime(now); got != tt.want {
				t.Errorf("formatTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	defer func() { defaultLog = original }()

	var buf bytes.Buffer

	defaultLog = Make(&buf, WithLevel(LevelDebug), WithFormat(FormatJSON))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			if !strings.Contains(out, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %s in %s", tt.level, out)
			}

			if !strings.Contains(out, `"key":"value"`) {
				t.Errorf("expected attribute in %s", out)
			}
		})
	}
}
