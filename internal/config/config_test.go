package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DocViewBackend.config")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("expected default port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Upload.MaxAttempts != 3 {
		t.Errorf("expected 3 upload attempts, got %d", cfg.Upload.MaxAttempts)
	}
	if cfg.Render.FullscreenBoost != 1.8 || cfg.Render.MaxFullscreenScale != 2.5 {
		t.Errorf("unexpected render defaults: %+v", cfg.Render)
	}
	if cfg.Cdn.Domain == "" {
		t.Error("expected a default CDN domain")
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DocViewBackend.config")

	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	cfg.Cdn.Domain = "cdn.internal.example"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("port not persisted, got %d", loaded.Server.Port)
	}
	if loaded.Cdn.Domain != "cdn.internal.example" {
		t.Errorf("cdn domain not persisted, got %s", loaded.Cdn.Domain)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("CDN_DOMAIN", "cdn.override.example")
	t.Setenv("INGEST_URL", "http://ingest.override/upload")

	path := filepath.Join(t.TempDir(), "DocViewBackend.config")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("PORT override ignored, got %d", cfg.Server.Port)
	}
	if cfg.Cdn.Domain != "cdn.override.example" {
		t.Errorf("CDN_DOMAIN override ignored, got %s", cfg.Cdn.Domain)
	}
	if cfg.Upstream.IngestURL != "http://ingest.override/upload" {
		t.Errorf("INGEST_URL override ignored, got %s", cfg.Upstream.IngestURL)
	}
}

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DocViewBackend.config")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(cfg.Storage.DataDirectory) {
		t.Errorf("data directory not resolved: %s", cfg.Storage.DataDirectory)
	}
	if !filepath.IsAbs(cfg.Storage.TempDirectory) {
		t.Errorf("temp directory not resolved: %s", cfg.Storage.TempDirectory)
	}
}
