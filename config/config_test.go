package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.NotEmpty(t, cfg.Keywords)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ollama:
  model: mistral
search:
  max_results: 3
keywords:
  - "speech recognition"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.Ollama.Model)
	// Untouched values keep their defaults.
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, []string{"speech recognition"}, cfg.Keywords)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "llama3:70b")
	t.Setenv("MAX_SEARCH_RESULTS", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "llama3:70b", cfg.Ollama.Model)
	assert.Equal(t, 7, cfg.Search.MaxResults)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}
