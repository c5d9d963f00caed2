// Package config reads the service settings from the environment, optionally
// seeded from a YAML file named by CONFIG_FILE.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"

	"sommelier"
)

// Dataset source kinds.
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourceChromem  = "chromem"
	SourcePostgres = "postgres"
)

// Embedding providers.
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

const DefaultDataKey = "wine_tasting_notes_embeddings__curie_combined.csv"

type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Dataset   DatasetConfig   `yaml:"dataset"`

	ResultCount int    `yaml:"result_count"`
	ListenAddr  string `yaml:"listen_addr"`
	LogLevel    string `yaml:"log_level"`
	Region      string `yaml:"region"`
}

type EmbeddingConfig struct {
	Provider        string `yaml:"provider"`
	APIKey          string `yaml:"api_key"`
	APIURL          string `yaml:"api_url"`
	SearchModel     string `yaml:"search_model"`
	SimilarityModel string `yaml:"similarity_model"`
}

type DatasetConfig struct {
	Source      string `yaml:"source"`
	Path        string `yaml:"path"`
	Bucket      string `yaml:"bucket"`
	Key         string `yaml:"key"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

// env names in the order they are applied.
var envVars = []struct {
	name string
	set  func(c *Config, v string) error
}{
	{"EMBEDDING_PROVIDER", func(c *Config, v string) error { c.Embedding.Provider = v; return nil }},
	{"OPEN_AI_API_KEY", func(c *Config, v string) error { c.Embedding.APIKey = v; return nil }},
	{"OPEN_AI_API_URL", func(c *Config, v string) error { c.Embedding.APIURL = v; return nil }},
	{"SEARCH_MODEL", func(c *Config, v string) error { c.Embedding.SearchModel = v; return nil }},
	{"SIMILARITY_MODEL", func(c *Config, v string) error { c.Embedding.SimilarityModel = v; return nil }},
	{"DATASET_SOURCE", func(c *Config, v string) error { c.Dataset.Source = v; return nil }},
	{"DATASET_PATH", func(c *Config, v string) error { c.Dataset.Path = v; return nil }},
	{"BUCKET_NAME", func(c *Config, v string) error { c.Dataset.Bucket = v; return nil }},
	{"DATA_CSV", func(c *Config, v string) error { c.Dataset.Key = v; return nil }},
	{"DATABASE_URL", func(c *Config, v string) error { c.Dataset.DatabaseURL = v; return nil }},
	{"DATABASE_TABLE", func(c *Config, v string) error { c.Dataset.Table = v; return nil }},
	{"RESULT_COUNT", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RESULT_COUNT: %w", err)
		}
		c.ResultCount = n
		return nil
	}},
	{"LISTEN_ADDR", func(c *Config, v string) error { c.ListenAddr = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"REGION", func(c *Config, v string) error { c.Region = v; return nil }},
}

// Load reads CONFIG_FILE when set, applies the environment on top, fills
// defaults and validates.
func Load() (Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	for _, e := range envVars {
		if v, ok := os.LookupEnv(e.name); ok && v != "" {
			if err := e.set(&cfg, v); err != nil {
				return Config{}, err
			}
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Dataset.Source == "" {
		if c.Dataset.Bucket != "" {
			c.Dataset.Source = SourceS3
		} else {
			c.Dataset.Source = SourceFile
		}
	}
	if c.Dataset.Key == "" {
		c.Dataset.Key = DefaultDataKey
	}
	if c.Dataset.Table == "" {
		c.Dataset.Table = "wine_reviews"
	}
	if c.ResultCount <= 0 {
		c.ResultCount = sommelier.DefaultResultCount
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("OPEN_AI_API_KEY is required for provider %s", ProviderOpenAI)
		}
	case ProviderBedrock:
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}

	switch c.Dataset.Source {
	case SourceFile, SourceChromem:
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required for source %s", c.Dataset.Source)
		}
	case SourceS3:
		if c.Dataset.Bucket == "" {
			return fmt.Errorf("BUCKET_NAME is required for source %s", SourceS3)
		}
	case SourcePostgres:
		if c.Dataset.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for source %s", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown dataset source %q", c.Dataset.Source)
	}
	return nil
}
