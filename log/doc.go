// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are configured with functional options at creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("RFC3339Nano"))
//
// Attributes are always passed as [slog.Attr] values:
//
//	logger.Info("file processed", slog.String("path", path))
//
// Package-level functions ([Debug], [Info], [Error], ...) log through a
// default logger that is reconfigured with [Config]. The CLI applies the
// --log-* flags there before any command runs.
//
// The zero [Logger] discards everything, so library types can embed one
// without requiring callers to configure logging.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used by the template engine
// for per-segment and per-pass detail.
//
// # Pretty output
//
// With [WithPretty] and [FormatText], keys and levels are styled with
// lipgloss. Styling degrades to plain text when the output is not a
// terminal.
package log
