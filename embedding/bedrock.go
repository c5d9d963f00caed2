package embedding

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	json "github.com/goccy/go-json"

	"sommelier"
)

// Titan has a single text model, so both variants default to it. Configure
// distinct model ids to get two embedding spaces.
const TitanModel = "amazon.titan-embed-text-v1"

// InvokeModelAPI is the part of the bedrock runtime client we use.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Bedrock calls Amazon Titan text embeddings.
type Bedrock struct {
	client InvokeModelAPI
	models Models
}

func NewBedrock(client InvokeModelAPI, models Models) *Bedrock {
	if models == nil {
		models = Models{
			VariantSearch:     TitanModel,
			VariantSimilarity: TitanModel,
		}
	}
	return &Bedrock{client: client, models: models}
}

type titanRequest struct {
	InputText string `json:"inputText"`
}

type titanResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

func (e *Bedrock) Embed(ctx context.Context, text string, variant Variant) ([]float32, error) {
	model, err := e.models.lookup(variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, sommelier.ErrUpstream)
	}
	body, err := json.Marshal(titanRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("marshal titan request: %w: %w", err, sommelier.ErrUpstream)
	}
	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("*/*"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("model %s: invoke: %w: %w", model, err, sommelier.ErrUpstream)
	}
	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("model %s: decode response: %w: %w", model, err, sommelier.ErrUpstream)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("model %s: empty embedding response: %w", model, sommelier.ErrUpstream)
	}
	return resp.Embedding, nil
}
