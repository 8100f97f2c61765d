package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, format string) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := slog.New(newHandler(&buf, Config{Level: "debug", Format: format}))
	return NewSlogLogger(l), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t, "text")
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR", "a=1", "d=4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t, "json")

	log.With("component", "Detection").Info(context.Background(), "ready")

	if !strings.Contains(buf.String(), `"component":"Detection"`) {
		t.Fatalf("expected component attribute in output:\n%s", buf.String())
	}
}

func TestSlogLogger_RedactsPersonalData(t *testing.T) {
	log, buf := newTestLogger(t, "text")
	ctx := context.Background()

	log.Info(ctx, "classify", "text", "mi correo es ana@example.com y mi dni 12345678")
	log.Error(ctx, "failed", "err", errors.New("bad card 4111 1111 1111 1234"))

	out := buf.String()
	for _, leaked := range []string{"ana@example.com", "12345678", "4111 1111 1111 1234"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("expected %q to be redacted in output:\n%s", leaked, out)
		}
	}
	if !strings.Contains(out, "a***@example.com") {
		t.Fatalf("expected redacted email in output:\n%s", out)
	}
	if !strings.Contains(out, "********34") && !strings.Contains(out, "******78") {
		t.Fatalf("expected redacted digits in output:\n%s", out)
	}
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	if parseLevel("verbose") != slog.LevelInfo {
		t.Error("expected unknown level to fall back to info")
	}
	if parseLevel(" WARN ") != slog.LevelWarn {
		t.Error("expected level parsing to be case-insensitive")
	}
}

func TestRedactDigits(t *testing.T) {
	if got := RedactDigits("12345678"); got != "******78" {
		t.Errorf("RedactDigits = %q", got)
	}
	if got := RedactEmail("nobody"); got != "***" {
		t.Errorf("RedactEmail = %q", got)
	}
}
