package logger

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
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "production",
		Level:       slog.LevelInfo,
	})

	log.Info("session started", "user_id", "usr-1")

	out := buf.String()
	if !strings.Contains(out, `"msg":"session started"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"user_id":"usr-1"`) {
		t.Errorf("expected user_id attribute, got %q", out)
	}
}

func TestNewPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "development",
		Level:       slog.LevelDebug,
	})

	log.Debug("clipping window", "days", 7)

	out := buf.String()
	if !strings.Contains(out, "clipping window") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "days=7") {
		t.Errorf("expected attribute in output, got %q", out)
	}
}

func TestPrettyHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	log := slog.New(h)

	log.Info("should be filtered")
	log.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("info record should have been filtered at warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn record missing from output")
	}
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	log := slog.New(h).With("component", "refresher")

	log.Info("run complete")

	out := buf.String()
	if !strings.Contains(out, "component=refresher") {
		t.Errorf("expected bound attribute, got %q", out)
	}
}
