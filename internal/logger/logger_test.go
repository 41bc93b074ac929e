package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"", LevelInfo},
		{"warn", LevelWarn},
		{"fatal", LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelFiltersAndFileFanout(t *testing.T) {
	buf := new(bytes.Buffer)
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	if err := SetOutput(buf, file); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	t.Cleanup(func() {
		_ = SetOutput(os.Stderr, "")
		SetLevel(LevelInfo)
	})

	SetLevel(LevelWarn)
	Info("hidden %d", 1)
	Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("warn line missing: %s", out)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "shown 2") {
		t.Fatalf("log file missing warn line: %s", data)
	}

	SetLevel(LevelTrace)
	Trace("deep")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Fatalf("trace level label missing: %s", buf.String())
	}
}
