package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Feed.Timeout != 600*time.Millisecond {
		t.Errorf("expected 600ms feed timeout, got %s", cfg.Feed.Timeout)
	}
	if cfg.Feed.DefaultLimit != 5 || cfg.Feed.MaxLimit != 50 {
		t.Errorf("unexpected limits: %+v", cfg.Feed)
	}
	if cfg.Redis.Enabled {
		t.Error("redis should be disabled by default")
	}
	if cfg.Events.QueueSize != 1000 {
		t.Errorf("expected queue size 1000, got %d", cfg.Events.QueueSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FEED_SERVER__PORT", "9090")
	t.Setenv("FEED_REDIS__ENABLED", "true")
	t.Setenv("FEED_CACHE__TENANT_MAX_SIZE", "64")
	t.Setenv("FEED_LOG__LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Redis.Enabled {
		t.Error("expected redis enabled")
	}
	if cfg.Cache.TenantMaxSize != 64 {
		t.Errorf("expected tenant cache size 64, got %d", cfg.Cache.TenantMaxSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7070\nfeed:\n  ttl_hint_seconds: 60\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("expected port 7070 from file, got %d", cfg.Server.Port)
	}
	if cfg.Feed.TTLHintSeconds != 60 {
		t.Errorf("expected ttl hint 60, got %d", cfg.Feed.TTLHintSeconds)
	}
	// Untouched keys keep their defaults.
	if cfg.Feed.MaxLimit != 50 {
		t.Errorf("expected default max limit, got %d", cfg.Feed.MaxLimit)
	}
}

func TestAddr(t *testing.T) {
	cfg := defaults()
	if got := cfg.Addr(); got != ":8080" {
		t.Errorf("expected :8080, got %s", got)
	}
}
