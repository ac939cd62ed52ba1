package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.log")
	if err := InitLogger(Options{File: path, Level: "info"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Named("test").Debugw("hidden")
	Named("test").Infow("tick", "n", 3)
	SyncLogger()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "test") || !strings.Contains(out, "tick") {
		t.Fatalf("log line missing fields: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %q", out)
	}
}

func TestInitLoggerBadLevel(t *testing.T) {
	if err := InitLogger(Options{Level: "loud"}); err == nil {
		t.Fatalf("unknown level accepted")
	}
}
