package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.TickInterval() != time.Second/60 {
		t.Fatalf("tick interval = %v", cfg.TickInterval())
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("missing env file should not fail: %v", err)
	}
	if cfg.Addr == "" {
		t.Fatalf("defaults not applied")
	}
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("ARENA_TICK_RATE", "30")
	t.Setenv("ARENA_PING_INTERVAL", "250ms")
	t.Setenv("ARENA_LOG_CONSOLE", "true")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TickRate != 30 || cfg.PingInterval != 250*time.Millisecond || !cfg.LogConsole {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ARENA_BOT_NAME=wanderer\nARENA_CORRECTION_EVERY=12\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("ARENA_BOT_NAME")
		_ = os.Unsetenv("ARENA_CORRECTION_EVERY")
	})
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BotName != "wanderer" || cfg.CorrectionEvery != 12 {
		t.Fatalf(".env values not applied: %+v", cfg)
	}
}

func TestLoadBadValue(t *testing.T) {
	t.Setenv("ARENA_TICK_RATE", "fast")
	if _, err := Load(""); err == nil {
		t.Fatalf("non-numeric tick rate accepted")
	}
}

func TestValidateRejectsZeroTickRate(t *testing.T) {
	cfg := Default()
	cfg.TickRate = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("zero tick rate accepted")
	}
}
