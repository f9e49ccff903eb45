package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Fatalf("expected default max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Session.LifetimeHours != 168 {
		t.Fatalf("expected default session lifetime 168h, got %d", cfg.Session.LifetimeHours)
	}
	if cfg.Social.QuizBaseURL != "http://localhost:8080" {
		t.Fatalf("expected default quiz base URL, got %q", cfg.Social.QuizBaseURL)
	}
	if cfg.Social.TumblrAPIURL != "" || cfg.Social.PublishSchedule != "" {
		t.Fatalf("expected unset social endpoints, got %+v", cfg.Social)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SOCIAL_PUBLISH_SCHEDULE", "@every 30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
	if cfg.Social.PublishSchedule != "@every 30s" {
		t.Fatalf("expected publish schedule override, got %q", cfg.Social.PublishSchedule)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("server:\n  port: 9999\nrate_limit:\n  requests_per_second: 5\n")
	if err := os.WriteFile(path, overlay, 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("expected overlay port 9999, got %d", cfg.Server.Port)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Fatalf("expected overlay rps 5, got %d", cfg.RateLimit.RequestsPerSecond)
	}
	// Fields absent from the overlay keep their environment defaults.
	if cfg.Database.MaxOpenConns != 25 {
		t.Fatalf("expected default max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoadMissingOverlayFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing overlay file")
	}
}
