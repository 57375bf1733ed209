package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// levelColors maps slog text output markers to their ANSI color.
var levelColors = []struct{ marker, color string }{
	{"level=DEBUG", colorCyan},
	{"level=INFO", colorGreen},
	{"level=WARN", colorYellow},
	{"level=ERROR", colorRed},
}

// Options controls how New builds the logger.
type Options struct {
	App   string
	Level string
	// Format is "json" or "text". Empty picks text for local environments.
	Format      string
	Environment string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New builds a structured slog logger tagged with the application name.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: true,
	}

	var handler slog.Handler
	switch resolveFormat(opts.Format, opts.Environment) {
	case "text":
		handler = slog.NewTextHandler(&colorWriter{writer: out, enabled: isTerminal(out)}, handlerOpts)
	default:
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.New(handler).With("app", opts.App)
}

// ParseLevel maps a level name to slog, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveFormat(format, environment string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return "json"
	case "text":
		return "text"
	}
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "local", "dev", "development":
		return "text"
	}
	return "json"
}

// colorWriter highlights the level of each text record when writing to a TTY.
type colorWriter struct {
	writer  io.Writer
	enabled bool
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if !cw.enabled {
		return cw.writer.Write(p)
	}
	text := string(p)
	for _, lc := range levelColors {
		text = strings.Replace(text, lc.marker, lc.color+lc.marker+colorReset, 1)
	}
	if _, err := cw.writer.Write([]byte(text)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
