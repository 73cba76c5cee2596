package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info("should be dropped")
	log.Warn("should be kept")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Error("info record emitted at warn level")
	}
	if !strings.Contains(out, "should be kept") {
		t.Error("warn record missing")
	}
}

func TestPersistentAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info").WithAction("cut-new-patch").WithVersion("10.0.2")

	log.Info("staged release", "pr", 42)

	out := buf.String()
	for _, want := range []string{"action=cut-new-patch", "version=10.0.2", "pr=42", "staged release"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "info")
	_ = parent.With("branch", "10.0.x")

	parent.Info("plain record")

	if strings.Contains(buf.String(), "branch=10.0.x") {
		t.Error("child attribute leaked into parent logger")
	}
}
