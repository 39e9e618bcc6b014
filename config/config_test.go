package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Retrieval.Mode != "long_term" {
		t.Errorf("Mode = %q, want long_term", cfg.Retrieval.Mode)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Conversation.MaxRounds != 10 {
		t.Errorf("MaxRounds = %d, want 10", cfg.Conversation.MaxRounds)
	}
	if cfg.Embedder.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", cfg.Embedder.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
retrieval:
  mode: short_term
  top_k: 3
conversation:
  max_rounds: 4
embedder:
  provider: mock
storage:
  dir: /tmp/stylist
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Retrieval.Mode != "short_term" || cfg.Retrieval.TopK != 3 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Conversation.MaxRounds != 4 {
		t.Errorf("MaxRounds = %d, want 4", cfg.Conversation.MaxRounds)
	}
	if cfg.Embedder.Provider != "mock" {
		t.Errorf("Provider = %q, want mock", cfg.Embedder.Provider)
	}
	if cfg.Storage.Dir != "/tmp/stylist" {
		t.Errorf("Dir = %q", cfg.Storage.Dir)
	}
	// Unset fields still pick up defaults.
	if cfg.Embedder.Dimensions != 384 {
		t.Errorf("Dimensions = %d, want 384", cfg.Embedder.Dimensions)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad retrieval mode", func(c *Config) { c.Retrieval.Mode = "medium_term" }},
		{"negative top_k", func(c *Config) { c.Retrieval.TopK = -1 }},
		{"negative max_rounds", func(c *Config) { c.Conversation.MaxRounds = -1 }},
		{"bad provider", func(c *Config) { c.Embedder.Provider = "openai" }},
		{"onnx without model", func(c *Config) {
			c.Embedder.Provider = "onnx"
			c.Embedder.ONNXModelPath = ""
		}},
		{"speech without credentials", func(c *Config) {
			c.Speech.Enabled = true
			c.Speech.CredentialsFile = ""
		}},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted invalid config", tc.name)
		}
	}
}
