package config_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"sommelier/config"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{
		"CONFIG_FILE", "EMBEDDING_PROVIDER", "OPEN_AI_API_KEY", "OPEN_AI_API_URL",
		"SEARCH_MODEL", "SIMILARITY_MODEL", "DATASET_SOURCE", "DATASET_PATH",
		"BUCKET_NAME", "DATA_CSV", "DATABASE_URL", "DATABASE_TABLE",
		"RESULT_COUNT", "LISTEN_ADDR", "LOG_LEVEL", "REGION",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPEN_AI_API_KEY", "sk-test")
	t.Setenv("BUCKET_NAME", "sommelier-ai")

	cfg, err := config.Load()
	assert.NilError(t, err)
	assert.Equal(t, cfg.Embedding.Provider, config.ProviderOpenAI)
	assert.Equal(t, cfg.Dataset.Source, config.SourceS3)
	assert.Equal(t, cfg.Dataset.Key, config.DefaultDataKey)
	assert.Equal(t, cfg.ResultCount, 3)
	assert.Equal(t, cfg.ListenAddr, ":8080")
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", "testdata/local.yaml")
	t.Setenv("RESULT_COUNT", "2")

	cfg, err := config.Load()
	assert.NilError(t, err)
	assert.Equal(t, cfg.Embedding.Provider, config.ProviderBedrock)
	assert.Equal(t, cfg.Embedding.SearchModel, "amazon.titan-embed-text-v2:0")
	assert.Equal(t, cfg.Dataset.Source, config.SourceChromem)
	assert.Equal(t, cfg.Dataset.Path, "db-data/reviews.gob")
	assert.Equal(t, cfg.ResultCount, 2)
	assert.Equal(t, cfg.LogLevel, "debug")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "openai without key",
			env:     map[string]string{"DATASET_PATH": "reviews.csv"},
			wantErr: "OPEN_AI_API_KEY",
		},
		{
			name:    "file without path",
			env:     map[string]string{"OPEN_AI_API_KEY": "k"},
			wantErr: "DATASET_PATH",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"OPEN_AI_API_KEY": "k", "DATASET_SOURCE": "postgres"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"EMBEDDING_PROVIDER": "cohere", "DATASET_PATH": "x"},
			wantErr: "unknown embedding provider",
		},
		{
			name:    "bad result count",
			env:     map[string]string{"RESULT_COUNT": "three"},
			wantErr: "RESULT_COUNT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
