package embedding_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"gotest.tools/v3/assert"

	"sommelier"
	"sommelier/embedding"
)

type fakeBedrock struct {
	modelID string
	input   string
	body    []byte
	err     error
}

func (f *fakeBedrock) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.modelID = *params.ModelId
	var req struct {
		InputText string `json:"inputText"`
	}
	if err := json.Unmarshal(params.Body, &req); err != nil {
		return nil, err
	}
	f.input = req.InputText
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func TestBedrockEmbed(t *testing.T) {
	client := &fakeBedrock{body: []byte(`{"embedding":[0.25,-0.5],"inputTextTokenCount":3}`)}
	e := embedding.NewBedrock(client, embedding.Models{
		embedding.VariantSearch:     "search-model",
		embedding.VariantSimilarity: "similarity-model",
	})

	vec, err := e.Embed(context.Background(), "peppery syrah", embedding.VariantSimilarity)
	assert.NilError(t, err)
	assert.DeepEqual(t, vec, []float32{0.25, -0.5})
	assert.Equal(t, client.modelID, "similarity-model")
	assert.Equal(t, client.input, "peppery syrah")
}

func TestBedrockDefaultsToTitan(t *testing.T) {
	client := &fakeBedrock{body: []byte(`{"embedding":[1]}`)}
	e := embedding.NewBedrock(client, nil)

	_, err := e.Embed(context.Background(), "q", embedding.VariantSearch)
	assert.NilError(t, err)
	assert.Equal(t, client.modelID, embedding.TitanModel)
}

func TestBedrockErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeBedrock
	}{
		{name: "invoke fails", client: &fakeBedrock{err: errors.New("throttled")}},
		{name: "malformed body", client: &fakeBedrock{body: []byte(`{"embedding":"x"}`)}},
		{name: "empty embedding", client: &fakeBedrock{body: []byte(`{"embedding":[]}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := embedding.NewBedrock(tt.client, nil)
			_, err := e.Embed(context.Background(), "q", embedding.VariantSearch)
			assert.Assert(t, errors.Is(err, sommelier.ErrUpstream), "got %v", err)
		})
	}
}
