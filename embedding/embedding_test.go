package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"

	"sommelier/embedding"
	"sommelier/metrics"
)

func TestInstrumentedCountsRequests(t *testing.T) {
	metrics.Register()
	calls := 0
	inner := embedding.Func(func(ctx context.Context, text string, variant embedding.Variant) ([]float32, error) {
		calls++
		if text == "fail" {
			return nil, errors.New("boom")
		}
		return []float32{1}, nil
	})
	e := embedding.NewInstrumented(inner, "fake")

	before := testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("fake", "similarity", "success"))
	_, err := e.Embed(context.Background(), "ok", embedding.VariantSimilarity)
	assert.NilError(t, err)
	_, err = e.Embed(context.Background(), "fail", embedding.VariantSimilarity)
	assert.ErrorContains(t, err, "boom")

	assert.Equal(t, calls, 2)
	assert.Equal(t, testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("fake", "similarity", "success")), before+1)
	assert.Assert(t, testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("fake", "similarity", "error")) >= 1)
}
