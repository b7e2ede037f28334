package config

import (
	"fmt"
	"time"
)

// BackendsConfig describes the generative backends available to the
// enhancement pipeline and which one serves requests by default.
type BackendsConfig struct {
	Default  string                   `yaml:"default"`
	Backends map[string]BackendConfig `yaml:"backends"`
}

type BackendConfig struct {
	Type        string            `yaml:"type"`
	BaseURL     string            `yaml:"base_url"`
	APIKey      string            `yaml:"api_key,omitempty"`
	Model       string            `yaml:"model"`
	Timeout     time.Duration     `yaml:"timeout"`
	MaxTokens   int               `yaml:"max_tokens"`
	Temperature float64           `yaml:"temperature"`
	Headers     map[string]string `yaml:"headers,omitempty"`
}

// DefaultBackend resolves the configured default backend entry. ok is false
// when no default is set, which runs the service floor-only.
func (b *BackendsConfig) DefaultBackend() (string, BackendConfig, bool) {
	if b.Default == "" {
		return "", BackendConfig{}, false
	}
	cfg, ok := b.Backends[b.Default]
	return b.Default, cfg, ok
}

func (b *BackendsConfig) Validate() error {
	if b.Default != "" {
		if _, ok := b.Backends[b.Default]; !ok {
			return fmt.Errorf("default backend %q not defined", b.Default)
		}
	}
	for name, cfg := range b.Backends {
		switch cfg.Type {
		case "ollama", "openai":
		default:
			return fmt.Errorf("backend %q has unknown type %q", name, cfg.Type)
		}
		if cfg.BaseURL == "" {
			return fmt.Errorf("backend %q has no base_url", name)
		}
		if cfg.Model == "" {
			return fmt.Errorf("backend %q has no model", name)
		}
	}
	return nil
}
