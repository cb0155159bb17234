package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	t.Setenv("LULLABY_API_HOST", "")
	t.Setenv("LULLABY_WORKSPACE", "")

	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.APIHost != DefaultAPIHost {
		t.Errorf("APIHost = %q, want %q", cfg.APIHost, DefaultAPIHost)
	}
	if cfg.DisplayInterval() != 5*time.Second {
		t.Errorf("DisplayInterval = %v, want 5s", cfg.DisplayInterval())
	}
	if !cfg.Notifications {
		t.Error("notifications should default to enabled")
	}
}

func TestSaveAndLoadRoundTripWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	cfg.APIHost = "http://example.test"
	cfg.DisplayIntervalMS = 1200
	if err := SaveConfigTo(path, cfg); err != nil {
		t.Fatalf("SaveConfigTo: %v", err)
	}

	t.Setenv("LULLABY_API_HOST", "http://override.test/")
	t.Setenv("LULLABY_WORKSPACE", "")

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if loaded.APIHost != "http://override.test" {
		t.Errorf("APIHost = %q, want env override", loaded.APIHost)
	}
	if loaded.DisplayInterval() != 1200*time.Millisecond {
		t.Errorf("DisplayInterval = %v", loaded.DisplayInterval())
	}
}

func TestNotificationsURL(t *testing.T) {
	cases := map[string]string{
		"https://electric-lullaby.herokuapp.com": "wss://electric-lullaby.herokuapp.com/notifications",
		"http://localhost:3000/":                 "ws://localhost:3000/notifications",
	}
	for host, want := range cases {
		cfg := &Config{APIHost: host}
		if got := cfg.NotificationsURL(); got != want {
			t.Errorf("NotificationsURL(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestInitializeStructure(t *testing.T) {
	cfg := Default()
	cfg.WorkspacePath = filepath.Join(t.TempDir(), "ws")
	if err := InitializeStructure(cfg); err != nil {
		t.Fatalf("InitializeStructure: %v", err)
	}
	for _, dir := range []string{cfg.LogsDir(), cfg.DataDir(), cfg.CapturesDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
}
