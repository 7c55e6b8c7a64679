package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", "tick", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "tick=3") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNewLogger_FansOut(t *testing.T) {
	var text, extra bytes.Buffer
	logger := NewLogger(&text, slog.LevelInfo, slog.NewJSONHandler(&extra, nil))

	logger.Info("decision", "strategy", "dodge")

	if !strings.Contains(text.String(), "strategy=dodge") {
		t.Errorf("text output = %q", text.String())
	}
	if !strings.Contains(extra.String(), `"strategy":"dodge"`) {
		t.Errorf("extra output = %q", extra.String())
	}
}
