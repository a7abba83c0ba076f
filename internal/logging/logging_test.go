package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" debug ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WithRun(NewWithWriter(&buf, "error", true)).Debug("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "run_id=")
}

func TestQuietDropsDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithWriter(&buf, "info", false).Debug("hidden")

	assert.Empty(t, buf.String())
}
