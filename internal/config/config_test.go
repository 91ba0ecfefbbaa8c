package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("got port %d", cfg.Server.Port)
	}
	if cfg.Gateway.Provider != "mock" {
		t.Errorf("got provider %s", cfg.Gateway.Provider)
	}
	if cfg.Log.Mode != "development" {
		t.Errorf("got log mode %s", cfg.Log.Mode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathbeast.yaml")
	body := `
server:
  port: 9090
gateway:
  provider: anthropic
  model: claude-sonnet-4-20250514
  apikey: test-key
log:
  mode: production
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("got port %d", cfg.Server.Port)
	}
	if cfg.Gateway.Provider != "anthropic" || cfg.Gateway.APIKey != "test-key" {
		t.Errorf("gateway not loaded: %+v", cfg.Gateway)
	}
	if cfg.Log.Mode != "production" {
		t.Errorf("got log mode %s", cfg.Log.Mode)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("MATHBEAST_SERVER_PORT", "3001")
	t.Setenv("MATHBEAST_GATEWAY_PROVIDER", "openai")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 3001 {
		t.Errorf("env port override ignored, got %d", cfg.Server.Port)
	}
	if cfg.Gateway.Provider != "openai" {
		t.Errorf("env provider override ignored, got %s", cfg.Gateway.Provider)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gateway.Provider = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}

	cfg = DefaultConfig()
	cfg.Server.Port = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative port")
	}

	cfg = DefaultConfig()
	cfg.Gateway.Provider = "anthropic"
	cfg.Gateway.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing model on a real provider")
	}
}
