package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "chroma", cfg.VectorStore.Type)
	assert.Equal(t, "mistral:latest", cfg.Ollama.Model)
	assert.Equal(t, 30*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, 3, cfg.Ollama.MaxRetries)
	assert.Equal(t, "ollama", cfg.Generation.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studysense.yaml")
	content := `
server:
  port: "9090"
vector_store:
  type: bolt
  bolt_path: /tmp/notes.db
ollama:
  timeout: 45s
  max_retries: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "bolt", cfg.VectorStore.Type)
	assert.Equal(t, "/tmp/notes.db", cfg.VectorStore.BoltPath)
	assert.Equal(t, 45*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, 1, cfg.Ollama.MaxRetries)
	// untouched sections keep their defaults
	assert.Equal(t, "mistral:latest", cfg.Ollama.Model)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VECTOR_STORE", "memory")
	t.Setenv("OLLAMA_MODEL", "llama3")
	t.Setenv("OLLAMA_TIMEOUT", "5s")
	t.Setenv("PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, 5*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoad_InvalidEnvDuration(t *testing.T) {
	t.Setenv("OLLAMA_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown store", func(c *Config) { c.VectorStore.Type = "qdrant" }, true},
		{"gemini without key", func(c *Config) { c.Generation.Provider = "gemini" }, true},
		{"gemini with key", func(c *Config) {
			c.Generation.Provider = "gemini"
			c.Generation.GeminiAPIKey = "key"
		}, false},
		{"unknown provider", func(c *Config) { c.Generation.Provider = "openai" }, true},
		{"negative retries", func(c *Config) { c.Ollama.MaxRetries = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
