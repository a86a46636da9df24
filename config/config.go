// Package config loads the application configuration from an optional YAML
// file layered over built-in defaults, with environment variable overrides
// for deployment-sensitive values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config describes everything the application needs at startup.
type Config struct {
	Ollama  OllamaConfig  `yaml:"ollama"`
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`

	// Keywords drive the periodic tech-watch cycle.
	Keywords []string `yaml:"keywords"`
}

// OllamaConfig points at the local model backend.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// SearchConfig bounds web search behavior.
type SearchConfig struct {
	MaxResults     int `yaml:"max_results"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// StorageConfig locates the on-disk data and report directories.
type StorageConfig struct {
	DataDir    string `yaml:"data_dir"`
	ReportsDir string `yaml:"reports_dir"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3",
		},
		Search: SearchConfig{
			MaxResults:     10,
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			DataDir:    "data",
			ReportsDir: "reports",
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		Keywords: DefaultKeywords(),
	}
}

// DefaultKeywords returns the built-in NLP watch keyword list.
func DefaultKeywords() []string {
	return []string{
		"transformer models",
		"large language models",
		"attention mechanism",
		"natural language processing",
		"machine translation",
		"sentiment analysis",
		"named entity recognition",
		"text summarization",
		"question answering",
		"information extraction",
		"text embedding",
		"retrieval augmented generation",
		"few-shot learning",
		"prompt engineering",
		"fine-tuning",
		"multimodal learning",
		"autonomous agents",
		"conversational agents",
	}
}

// Load parses the YAML file at path over the defaults. An empty path returns
// the defaults untouched. Environment overrides apply last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		c.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("TECHWATCH_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("TECHWATCH_REPORTS_DIR"); v != "" {
		c.Storage.ReportsDir = v
	}
	if v := os.Getenv("TECHWATCH_ADDR"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("MAX_SEARCH_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxResults = n
		}
	}
}
