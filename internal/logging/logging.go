package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// New creates a console slog.Logger with provided level string.
// verbose forces debug output regardless of level.
func New(level string, verbose bool) *slog.Logger {
	return NewWithWriter(os.Stdout, level, verbose)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl := levelFromString(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler)
}

// WithRun tags every record of one invocation with a fresh run_id.
func WithRun(logger *slog.Logger) *slog.Logger {
	return logger.With("run_id", uuid.NewString())
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
