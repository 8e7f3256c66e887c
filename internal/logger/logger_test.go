package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"garbage", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" {
		t.Fatalf("unexpected string %s", LevelWarn.String())
	}
	if Level(99).String() != "UNKNOWN" {
		t.Fatalf("unexpected string for invalid level")
	}
}

func TestLoggerWritesLeveledLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := New(LevelInfo, path, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	l.Debug("should be filtered")
	l.Info("hello %s", "world")
	l.Error("boom")
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "should be filtered") {
		t.Fatal("debug line should be filtered at info level")
	}
	if !strings.Contains(content, "[INFO] hello world") {
		t.Fatalf("info line missing: %q", content)
	}
	if !strings.Contains(content, "[ERROR] boom") {
		t.Fatalf("error line missing: %q", content)
	}
}

func TestLoggerWithPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := New(LevelDebug, path, "llm")
	if err != nil {
		t.Fatal(err)
	}

	child := l.WithPrefix("groq")
	child.Info("request sent")
	l.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "[llm:groq] request sent") {
		t.Fatalf("prefixed line missing: %q", data)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := New(LevelError, path, "")
	if err != nil {
		t.Fatal(err)
	}

	l.Info("hidden")
	l.SetLevel(LevelInfo)
	l.Info("visible")
	l.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Fatal("line below level should be suppressed")
	}
	if !strings.Contains(string(data), "visible") {
		t.Fatal("line at level should be written")
	}
}

func TestLoggerDisabledWithoutPath(t *testing.T) {
	l, err := New(LevelDebug, "", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	// Must not panic and must not create files.
	l.Info("goes nowhere")
	l.Close()
}

func TestGlobalFallsBackToNoop(t *testing.T) {
	// Global() before Init must return a usable disabled logger.
	Debug("no-op")
	Info("no-op")
	Warn("no-op")
	Error("no-op")
}
