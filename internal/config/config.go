// Package config loads the service configuration: the Fuseki query store,
// the Ollama generation and embedding models, and the template-embedding
// cache location. Values come from an optional YAML file with environment
// variables taking precedence, and every knob has a documented default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all GraphRAG configuration.
type Config struct {
	Fuseki    FusekiConfig    `yaml:"fuseki"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	API       APIConfig       `yaml:"api"`
	Debug     bool            `yaml:"debug"`
}

// FusekiConfig locates the SPARQL query store.
type FusekiConfig struct {
	Host    string `yaml:"host"`    // Default: "localhost"
	Port    string `yaml:"port"`    // Default: "3030"
	Dataset string `yaml:"dataset"` // Default: "ds"
}

// QueryURL returns the dataset's SPARQL query endpoint.
func (c FusekiConfig) QueryURL() string {
	return fmt.Sprintf("http://%s:%s/%s/sparql", c.Host, c.Port, c.Dataset)
}

// OllamaConfig locates the generation service.
type OllamaConfig struct {
	Host  string `yaml:"host"`  // Default: "localhost"
	Port  string `yaml:"port"`  // Default: "11434"
	Model string `yaml:"model"` // Default: "llama2"
}

// BaseURL returns the Ollama API base URL.
func (c OllamaConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.Host, c.Port)
}

// EmbeddingConfig configures the embedding model and the persisted
// template-embedding cache.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`      // Default: "mxbai-embed-large"
	CachePath string `yaml:"cache_path"` // Default: "data/template_embeddings.json"
}

// APIConfig configures the HTTP chat surface.
type APIConfig struct {
	Addr string `yaml:"addr"` // Default: ":8080"
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Fuseki: FusekiConfig{
			Host:    "localhost",
			Port:    "3030",
			Dataset: "ds",
		},
		Ollama: OllamaConfig{
			Host:  "localhost",
			Port:  "11434",
			Model: "llama2",
		},
		Embedding: EmbeddingConfig{
			Model:     "mxbai-embed-large",
			CachePath: "data/template_embeddings.json",
		},
		API: APIConfig{
			Addr: ":8080",
		},
	}
}

// Load reads configuration from path (a missing file is fine), then applies
// environment overrides on top.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults + env only.
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides honors the environment names the service has always
// used: FUSEKI_HOST, FUSEKI_PORT, FUSEKI_DATASET, OLLAMA_HOST, OLLAMA_PORT,
// OLLAMA_MODEL, EMBEDDING_MODEL.
func (c *Config) applyEnvOverrides() {
	setFromEnv(&c.Fuseki.Host, "FUSEKI_HOST")
	setFromEnv(&c.Fuseki.Port, "FUSEKI_PORT")
	setFromEnv(&c.Fuseki.Dataset, "FUSEKI_DATASET")
	setFromEnv(&c.Ollama.Host, "OLLAMA_HOST")
	setFromEnv(&c.Ollama.Port, "OLLAMA_PORT")
	setFromEnv(&c.Ollama.Model, "OLLAMA_MODEL")
	setFromEnv(&c.Embedding.Model, "EMBEDDING_MODEL")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
