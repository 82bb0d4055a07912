package config

import (
	"strings"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/hms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.SessionTTLMin != 480 {
		t.Errorf("expected default session ttl 480, got %d", cfg.SessionTTLMin)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("unexpected pool defaults: max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/hms")
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestValidate_SessionSecret(t *testing.T) {
	cfg := &Config{Env: "production", SessionSecret: "short", SessionTTLMin: 60, MediaMaxBytes: 1024}
	if err := cfg.Validate(); err == nil {
		t.Error("expected short secret to be rejected in production")
	}

	cfg.SessionSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	dev := &Config{Env: "development", SessionTTLMin: 60, MediaMaxBytes: 1024}
	if err := dev.Validate(); err != nil {
		t.Errorf("development mode must allow empty secret: %v", err)
	}
	if len(dev.SessionSecretBytes()) == 0 {
		t.Error("development fallback secret must be non-empty")
	}
}

func TestValidate_TTL(t *testing.T) {
	cfg := &Config{Env: "development", SessionTTLMin: 0, MediaMaxBytes: 1024}
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero ttl to be rejected")
	}
}
