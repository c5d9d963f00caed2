package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"sommelier"
)

// Default OpenAI models for the two variants.
const (
	OpenAISearchModel     = "text-search-curie-query-001"
	OpenAISimilarityModel = "text-similarity-curie-001"
)

// OpenAI calls an OpenAI compatible /embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	models Models
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Models  Models
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	models := cfg.Models
	if models == nil {
		models = Models{
			VariantSearch:     OpenAISearchModel,
			VariantSimilarity: OpenAISimilarityModel,
		}
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		models: models,
	}
}

func (e *OpenAI) Embed(ctx context.Context, text string, variant Variant) ([]float32, error) {
	model, err := e.models.lookup(variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, sommelier.ErrUpstream)
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, apiError(model, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("model %s: empty embedding response: %w", model, sommelier.ErrUpstream)
	}
	return resp.Data[0].Embedding, nil
}

func apiError(model string, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("model %s: embedding API error %d: %s: %w",
			model, reqErr.HTTPStatusCode, string(reqErr.Body), sommelier.ErrUpstream)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("model %s: embedding API error %d: %s: %w",
			model, apiErr.HTTPStatusCode, apiErr.Message, sommelier.ErrUpstream)
	}
	return fmt.Errorf("model %s: embedding request failed: %w: %w", model, err, sommelier.ErrUpstream)
}
