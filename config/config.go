// Package config loads the assistant's YAML configuration file and fills
// in defaults so callers can construct every subsystem from one struct.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full assistant configuration.
type Config struct {
	Retrieval    Retrieval    `yaml:"retrieval"`
	Conversation Conversation `yaml:"conversation"`
	Anthropic    Anthropic    `yaml:"anthropic"`
	Embedder     Embedder     `yaml:"embedder"`
	Storage      Storage      `yaml:"storage"`
	Speech       Speech       `yaml:"speech"`
	Images       Images       `yaml:"images"`
}

// Retrieval tunes the memory engine.
type Retrieval struct {
	// Mode is "long_term" or "short_term".
	Mode string `yaml:"mode"`
	TopK int    `yaml:"top_k"`
}

// Conversation tunes the phase controller.
type Conversation struct {
	MaxRounds int `yaml:"max_rounds"`
}

// Anthropic configures the recommendation and emotion models. The API key
// is read from the ANTHROPIC_API_KEY environment variable, never from the
// file.
type Anthropic struct {
	Model        string `yaml:"model"`
	EmotionModel string `yaml:"emotion_model"`
	MaxTokens    int    `yaml:"max_tokens"`
}

// Embedder selects and configures the embedding provider.
type Embedder struct {
	// Provider is "ollama", "onnx" or "mock".
	Provider string `yaml:"provider"`

	OllamaBaseURL string `yaml:"ollama_base_url"`
	OllamaModel   string `yaml:"ollama_model"`
	Dimensions    int    `yaml:"dimensions"`

	ONNXModelPath     string `yaml:"onnx_model_path"`
	ONNXTokenizerPath string `yaml:"onnx_tokenizer_path"`
	ONNXLibraryPath   string `yaml:"onnx_library_path"`

	// CacheBytes bounds the embedding cache. Zero uses the cache default,
	// a negative value disables caching.
	CacheBytes int64 `yaml:"cache_bytes"`
}

// Storage configures on-disk persistence. An empty Dir keeps the store
// in memory only.
type Storage struct {
	Dir string `yaml:"dir"`
}

// Speech configures the Google Cloud speech adapters.
type Speech struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	LanguageCode    string `yaml:"language_code"`
	Voice           string `yaml:"voice"`
	SampleRateHertz int    `yaml:"sample_rate_hertz"`
}

// Images configures outfit image rendering.
type Images struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// Default returns a configuration that runs without a file: long-term
// retrieval, ollama embeddings, in-memory storage, no speech.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.Retrieval.Mode == "" {
		c.Retrieval.Mode = "long_term"
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
	if c.Conversation.MaxRounds == 0 {
		c.Conversation.MaxRounds = 10
	}
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = "ollama"
	}
	if c.Embedder.Dimensions == 0 {
		c.Embedder.Dimensions = 384
	}
}

// Validate rejects settings the constructors would choke on later.
func (c *Config) Validate() error {
	switch c.Retrieval.Mode {
	case "long_term", "short_term":
	default:
		return fmt.Errorf("config: unknown retrieval mode %q", c.Retrieval.Mode)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("config: top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Conversation.MaxRounds < 1 {
		return fmt.Errorf("config: max_rounds must be positive, got %d", c.Conversation.MaxRounds)
	}
	switch c.Embedder.Provider {
	case "ollama", "onnx", "mock":
	default:
		return fmt.Errorf("config: unknown embedder provider %q", c.Embedder.Provider)
	}
	if c.Embedder.Provider == "onnx" && c.Embedder.ONNXModelPath == "" {
		return fmt.Errorf("config: onnx embedder requires onnx_model_path")
	}
	if c.Speech.Enabled && c.Speech.CredentialsFile == "" {
		return fmt.Errorf("config: speech requires credentials_file")
	}
	return nil
}
