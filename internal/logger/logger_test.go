package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Entry(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	logger.Error("detail fetch failed", Fields{"source": "neumos", "index": 2}, errors.New("status 503"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	entry := entries[0]

	if entry["message"] != "detail fetch failed" {
		t.Errorf("message = %v, want %q", entry["message"], "detail fetch failed")
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
	if entry["source"] != "neumos" {
		t.Errorf("source = %v, want neumos", entry["source"])
	}
	if entry["index"] != float64(2) {
		t.Errorf("index = %v, want 2", entry["index"])
	}
	if entry["error"] != "status 503" {
		t.Errorf("error = %v, want %q", entry["error"], "status 503")
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		log       func(*Logger)
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, func(l *Logger) { l.Debug("test", nil) }, true},
		{"info logs at debug", LevelDebug, func(l *Logger) { l.Info("test", nil) }, true},
		{"debug doesn't log at info", LevelInfo, func(l *Logger) { l.Debug("test", nil) }, false},
		{"info doesn't log at warn", LevelWarn, func(l *Logger) { l.Info("test", nil) }, false},
		{"warn logs at warn", LevelWarn, func(l *Logger) { l.Warn("test", nil, nil) }, true},
		{"error always logs", LevelError, func(l *Logger) { l.Error("test", nil, nil) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(New(tt.minLevel, &buf))

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("logged = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	child := New(LevelInfo, &buf).With(Fields{"request_id": "abc"})

	child.Info("one", nil)
	child.Info("two", Fields{"events": 3})

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e["request_id"] != "abc" {
			t.Errorf("request_id = %v, want abc", e["request_id"])
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venue-events.log")
	logger, closer := NewFile(LevelInfo, path)
	logger.Info("written to file", nil)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	previous := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(previous)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil, nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if got := len(decodeLines(t, &buf)); got != 4 {
		t.Errorf("got %d entries, want 4", got)
	}
}
