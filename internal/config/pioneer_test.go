package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultPioneerSectionsFillsTimings(t *testing.T) {
	cfg := NewDefaultPioneerSections()

	if cfg.Locking.Objects.Duration != 30 {
		t.Errorf("expected objects lock duration 30, got %v", cfg.Locking.Objects.Duration)
	}
	if cfg.Serialization.Encoding != "json" {
		t.Errorf("expected default encoding json, got %s", cfg.Serialization.Encoding)
	}
}

func TestPioneerConfigPathDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv(pioneerConfigEnvVar)
	if got := PioneerConfigPath(); got != defaultPioneerConfigPath {
		t.Errorf("expected default path %q, got %q", defaultPioneerConfigPath, got)
	}
}

func TestPioneerConfigPathHonorsEnvVar(t *testing.T) {
	t.Setenv(pioneerConfigEnvVar, "/tmp/custom.pioneer.json")
	if got := PioneerConfigPath(); got != "/tmp/custom.pioneer.json" {
		t.Errorf("expected env-provided path, got %q", got)
	}
}

func TestLoadPioneerConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadPioneerConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cluster.Name != "pioneer" {
		t.Errorf("expected default cluster name, got %q", cfg.Cluster.Name)
	}
}

func TestLoadPioneerConfigParsesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pioneer.json")
	body := `{"cluster":{"name":"prod","port":7947},"storage":{"primary":{"endpoint":"http://localhost:9000","secure":false}}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadPioneerConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cluster.Name != "prod" {
		t.Errorf("expected cluster name prod, got %q", cfg.Cluster.Name)
	}
	if cfg.Cluster.Port != 7947 {
		t.Errorf("expected cluster port 7947, got %d", cfg.Cluster.Port)
	}
	target, ok := cfg.Storage["primary"]
	if !ok {
		t.Fatalf("expected storage target %q to be present", "primary")
	}
	if target.Endpoint != "http://localhost:9000" {
		t.Errorf("expected endpoint to parse, got %q", target.Endpoint)
	}
}
