package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `server: {}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.PinLength != DefaultPinLength {
		t.Errorf("pin_length: got %d, want %d", cfg.Server.PinLength, DefaultPinLength)
	}
	if cfg.Server.MaxResultBytes != DefaultMaxResultBytes {
		t.Errorf("max_result_bytes: got %d, want %d", cfg.Server.MaxResultBytes, DefaultMaxResultBytes)
	}
	if cfg.Server.StaleAge != DefaultStaleAge {
		t.Errorf("stale_age: got %v, want %v", cfg.Server.StaleAge, DefaultStaleAge)
	}
	if cfg.Server.SweepInterval != DefaultSweepInterval {
		t.Errorf("sweep_interval: got %v, want %v", cfg.Server.SweepInterval, DefaultSweepInterval)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  pin_length: 6
  max_result_bytes: 4096
  stale_age: 30m
  sweep_interval: 5s
  stats_interval: 1s
  cors:
    allow_origins: ["https://app.example.com"]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.PinLength != 6 {
		t.Errorf("pin_length: got %d, want 6", cfg.Server.PinLength)
	}
	if cfg.Server.StaleAge != 30*time.Minute {
		t.Errorf("stale_age: got %v, want 30m", cfg.Server.StaleAge)
	}
	if len(cfg.Server.CORS.AllowOrigins) != 1 || cfg.Server.CORS.AllowOrigins[0] != "https://app.example.com" {
		t.Errorf("cors.allow_origins: got %v", cfg.Server.CORS.AllowOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  http_port: 70000\n"},
		{"zero pin length", "server:\n  pin_length: 0\n"},
		{"huge pin length", "server:\n  pin_length: 32\n"},
		{"negative ceiling", "server:\n  max_result_bytes: -1\n"},
		{"zero stale age", "server:\n  stale_age: 0s\n"},
		{"zero sweep interval", "server:\n  sweep_interval: 0s\n"},
		{"not yaml", "{{nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.yaml)
			if _, err := Load(p); err == nil {
				t.Errorf("Load(%s): expected error, got nil", tc.name)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load on missing file: expected error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := validate(cfg); err != nil {
		t.Fatalf("Default config must validate: %v", err)
	}
}
