package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"-8":      slog.Level(-8),
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "WARN", Format: "json", Writer: &buf})

	l.Info("hidden")
	l.Warn("shown", slog.String("table", "users"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "users", entry["table"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "DEBUG", Format: "text", Writer: &buf})

	l.Debug("compiled", slog.String("sql", "SELECT 1"))
	assert.Contains(t, buf.String(), "msg=compiled")
	assert.Contains(t, buf.String(), `sql="SELECT 1"`)
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := Setup(Options{Format: "json", Writer: &buf})
	assert.Same(t, l, slog.Default())

	slog.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
