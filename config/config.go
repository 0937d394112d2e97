package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	Generation  GenerationConfig  `yaml:"generation"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Logging     LoggingConfig     `yaml:"logging"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Import      ImportConfig      `yaml:"import"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

// VectorStoreConfig selects the collection store: "chroma", "bolt" or "memory".
type VectorStoreConfig struct {
	Type      string `yaml:"type"`
	ChromaURL string `yaml:"chroma_url"`
	BoltPath  string `yaml:"bolt_path"`
}

type OllamaConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	EmbedModel   string        `yaml:"embed_model"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// GenerationConfig selects the text-generation backend: "ollama" or "gemini".
type GenerationConfig struct {
	Provider     string `yaml:"provider"`
	GeminiModel  string `yaml:"gemini_model"`
	GeminiAPIKey string `yaml:"-"`
}

type EmbeddingConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ExtractionConfig struct {
	UnidocLicenseKey string `yaml:"-"`
}

type ImportConfig struct {
	Includes []string `yaml:"includes"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		VectorStore: VectorStoreConfig{
			Type:      "chroma",
			ChromaURL: "http://localhost:8000",
			BoltPath:  "studysense.db",
		},
		Ollama: OllamaConfig{
			BaseURL:      "http://localhost:11434",
			Model:        "mistral:latest",
			EmbedModel:   "all-minilm",
			Timeout:      30 * time.Second,
			MaxRetries:   3,
			RetryBackoff: time.Second,
		},
		Generation: GenerationConfig{
			Provider:    "ollama",
			GeminiModel: "gemini-2.5-flash",
		},
		Embedding: EmbeddingConfig{
			CacheTTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Import: ImportConfig{
			Includes: []string{"**/*.txt", "**/*.docx", "**/*.pdf"},
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error. An empty path skips
// the file entirely.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Environment, "APP_ENV")
	setString(&cfg.VectorStore.Type, "VECTOR_STORE")
	setString(&cfg.VectorStore.ChromaURL, "CHROMA_URL")
	setString(&cfg.VectorStore.BoltPath, "BOLT_PATH")
	setString(&cfg.Ollama.BaseURL, "OLLAMA_BASE_URL")
	setString(&cfg.Ollama.Model, "OLLAMA_MODEL")
	setString(&cfg.Ollama.EmbedModel, "OLLAMA_EMBED_MODEL")
	setString(&cfg.Generation.Provider, "GENERATION_PROVIDER")
	setString(&cfg.Generation.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.Generation.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.Extraction.UnidocLicenseKey, "UNIDOC_LICENSE_KEY")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.File, "LOG_FILE")

	if v := os.Getenv("OLLAMA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid OLLAMA_TIMEOUT %q: %w", v, err)
		}
		cfg.Ollama.Timeout = d
	}
	if v := os.Getenv("OLLAMA_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid OLLAMA_MAX_RETRIES %q: %w", v, err)
		}
		cfg.Ollama.MaxRetries = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.VectorStore.Type {
	case "chroma", "bolt", "memory":
	default:
		return fmt.Errorf("unknown vector store type %q", c.VectorStore.Type)
	}
	switch c.Generation.Provider {
	case "ollama":
	case "gemini":
		if c.Generation.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set when generation provider is gemini")
		}
	default:
		return fmt.Errorf("unknown generation provider %q", c.Generation.Provider)
	}
	if c.Ollama.MaxRetries < 0 {
		return fmt.Errorf("ollama max_retries must not be negative")
	}
	return nil
}

// IsProduction reports whether logs should be emitted as JSON only.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
