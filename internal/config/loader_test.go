package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "hello")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "hello"},
		{"${TEST_VAR:default}", "hello"},
		{"${UNSET_VAR:fallback}", "fallback"},
		{"${UNSET_VAR}", ""},
		{"no vars here", "no vars here"},
		{"prefix-${TEST_VAR}-suffix", "prefix-hello-suffix"},
	}

	for _, tt := range tests {
		got := expandEnvVars(tt.input)
		if got != tt.expected {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoadFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	content := `
server:
  host: "0.0.0.0"
  port: 9999
`
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	tmpFile.Close()

	var cfg Config
	if err := LoadFile(tmpFile.Name(), &cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
}

func TestLoadFile_WithEnvVars(t *testing.T) {
	os.Setenv("TEST_PORT", "7777")
	defer os.Unsetenv("TEST_PORT")

	tmpFile, err := os.CreateTemp("", "test-config-env-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	content := `
server:
  host: "${TEST_HOST:127.0.0.1}"
  port: ${TEST_PORT}
`
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	tmpFile.Close()

	var cfg Config
	if err := LoadFile(tmpFile.Name(), &cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1 (default), got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected port 7777, got %d", cfg.Server.Port)
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()

	enhancer := `
server:
  port: 8090
limits:
  default: 20
environment: staging
`
	backends := `
default: primary
backends:
  primary:
    type: ollama
    base_url: "http://localhost:11434"
    model: "qwen2.5:3b"
    timeout: 120s
    max_tokens: 500
    temperature: 0.7
`
	if err := os.WriteFile(filepath.Join(dir, "enhancer.yaml"), []byte(enhancer), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "backends.yaml"), []byte(backends), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := loader.Config()
	if cfg.Server.Port != 8090 {
		t.Errorf("expected port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Limits.Default != 20 {
		t.Errorf("expected default limit 20, got %d", cfg.Limits.Default)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Enhancement.BatchLimit != 5 {
		t.Errorf("expected default batch limit 5, got %d", cfg.Enhancement.BatchLimit)
	}
	if cfg.Environment != EnvStaging {
		t.Errorf("expected staging environment, got %s", cfg.Environment)
	}

	name, backend, ok := loader.Backends().DefaultBackend()
	if !ok {
		t.Fatal("DefaultBackend should resolve the primary entry")
	}
	if name != "primary" {
		t.Errorf("expected default backend primary, got %s", name)
	}
	if backend.Model != "qwen2.5:3b" {
		t.Errorf("expected model qwen2.5:3b, got %s", backend.Model)
	}
}

func TestLoader_Load_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	enhancer := `
limits:
  default: -5
`
	if err := os.WriteFile(filepath.Join(dir, "enhancer.yaml"), []byte(enhancer), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "backends.yaml"), []byte("default: x\nbackends: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := loader.Load(); err == nil {
		t.Fatal("expected validation error for negative limit, got nil")
	}
}
