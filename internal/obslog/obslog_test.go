package obslog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandleWritesOneJoinedLine(t *testing.T) {
	var buf bytes.Buffer
	h := New(&buf, slog.LevelInfo, false)
	logger := slog.New(h)

	logger.Info("booted", "pc", "0x80000000")

	out := buf.String()
	if !strings.Contains(out, "booted") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "pc=0x80000000") {
		t.Errorf("output %q missing attr", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("output %q should be exactly one line", out)
	}
}

func TestEnabledRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := New(&buf, slog.LevelWarn, false)

	if h.Enabled(nil, slog.LevelInfo) {
		t.Error("Info should not be enabled at Warn level")
	}
	if !h.Enabled(nil, slog.LevelWarn) {
		t.Error("Warn should be enabled at Warn level")
	}
}

func TestWithAttrsPreservesOutputTarget(t *testing.T) {
	var buf bytes.Buffer
	h := New(&buf, slog.LevelInfo, false)
	withAttrs := h.WithAttrs([]slog.Attr{slog.String("component", "cpu")})

	logger := slog.New(withAttrs)
	logger.Info("step")

	if !strings.Contains(buf.String(), "component=cpu") {
		t.Errorf("output %q missing attr carried via WithAttrs", buf.String())
	}
}
