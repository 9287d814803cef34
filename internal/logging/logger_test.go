package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"gavel/internal/services"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	return slog.New(newConsoleHandler(buf, lvl)), buf
}

func TestConsoleHandlerFormatsMessage(t *testing.T) {
	logger, buf := newBufferLogger()
	logger.Info("episode ingested", String("episode_guid", "abc-123"), Int("segments", 4))

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Fatalf("missing level label: %q", line)
	}
	if !strings.Contains(line, "episode ingested") {
		t.Fatalf("missing message: %q", line)
	}
	if !strings.Contains(line, "episode_guid=abc-123") || !strings.Contains(line, "segments=4") {
		t.Fatalf("missing attrs: %q", line)
	}
}

func TestConsoleHandlerComponentPrefix(t *testing.T) {
	logger, buf := newBufferLogger()
	NewComponentLogger(logger, "ingest").Info("feed fetched")

	line := buf.String()
	if !strings.Contains(line, "ingest: feed fetched") {
		t.Fatalf("component prefix missing: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not render as a field: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	logger, buf := newBufferLogger()
	logger.Info("case drafted", String("caption", "Smith v. The League"))

	if !strings.Contains(buf.String(), `caption="Smith v. The League"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logger, buf := newBufferLogger()

	ctx := services.WithStage(context.Background(), "draft-opinion")
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithDocket(ctx, "24-0007-2")

	WithContext(ctx, logger).Info("drafting")

	line := buf.String()
	for _, want := range []string{"stage=draft-opinion", "run_id=run-1", "docket=24-0007-2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
