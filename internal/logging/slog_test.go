package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// records decodes the JSON lines written by a logger under test.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line is not JSON: %q", line)
		}
		out = append(out, rec)
	}
	return out
}

func TestSlogLogger_LevelsAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()

	log.Debug(ctx, "purge skipped", "reason", "idle")
	log.Info(ctx, "user registered", "user_id", "u-1")
	log.Warn(ctx, "notification dropped", "queue", 64)
	log.Error(ctx, "db ping failed", "error", "timeout")

	want := []struct{ level, msg, key string }{
		{"DEBUG", "purge skipped", "reason"},
		{"INFO", "user registered", "user_id"},
		{"WARN", "notification dropped", "queue"},
		{"ERROR", "db ping failed", "error"},
	}
	got := records(t, &buf)
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i]["level"] != w.level || got[i]["msg"] != w.msg {
			t.Errorf("record %d = %v, want level=%s msg=%q", i, got[i], w.level, w.msg)
		}
		if _, ok := got[i][w.key]; !ok {
			t.Errorf("record %d misses %q: %v", i, w.key, got[i])
		}
	}
}

func TestSlogLogger_WithIsScopedToChild(t *testing.T) {
	var buf bytes.Buffer
	parent := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()

	parent.With("module", "notify").Info(ctx, "sent")
	parent.Info(ctx, "plain")

	got := records(t, &buf)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0]["module"] != "notify" {
		t.Errorf("child record lacks module: %v", got[0])
	}
	if _, ok := got[1]["module"]; ok {
		t.Errorf("parent record must not carry child attributes: %v", got[1])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseLevel(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestNewJSONLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewJSONLogger(&buf, "warn")
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}
	ctx := context.Background()

	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown", "module", "test")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d:\n%s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["module"] != "test" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewJSONLogger_BadLevel(t *testing.T) {
	if _, err := NewJSONLogger(&bytes.Buffer{}, "nope"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNop_SatisfiesLogger(t *testing.T) {
	var l Logger = Nop{}
	l.With("k", "v").Info(context.Background(), "ignored")
}
