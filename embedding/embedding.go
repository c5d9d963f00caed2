// Package embedding talks to the external embedding API.
package embedding

import (
	"context"
	"fmt"
	"time"

	"sommelier"
	"sommelier/metrics"
)

// Variant selects which embedding space a text is projected into.
type Variant string

const (
	// VariantSearch is the asymmetric space for short queries against long documents.
	VariantSearch Variant = "search-query"
	// VariantSimilarity is the symmetric space for document to document comparison.
	VariantSimilarity Variant = "similarity"
)

// Embedder returns the embedding of text in the given variant.
type Embedder interface {
	Embed(ctx context.Context, text string, variant Variant) ([]float32, error)
}

// Func adapts a plain function to Embedder.
type Func func(ctx context.Context, text string, variant Variant) ([]float32, error)

func (f Func) Embed(ctx context.Context, text string, variant Variant) ([]float32, error) {
	return f(ctx, text, variant)
}

// Models maps each variant to a provider model id.
type Models map[Variant]string

func (m Models) lookup(v Variant) (string, error) {
	model, ok := m[v]
	if !ok || model == "" {
		return "", fmt.Errorf("no model configured for variant %q", v)
	}
	return model, nil
}

// Instrumented records request counts and latency per variant.
type Instrumented struct {
	inner    Embedder
	provider string
}

func NewInstrumented(inner Embedder, provider string) *Instrumented {
	return &Instrumented{inner: inner, provider: provider}
}

func (e *Instrumented) Embed(ctx context.Context, text string, variant Variant) ([]float32, error) {
	start := time.Now()
	vec, err := e.inner.Embed(ctx, text, variant)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(variant), "error").Inc()
		sommelier.Logger.Warn("Embedding request failed", "provider", e.provider, "variant", variant, "error", err)
		return nil, err
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(variant), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, string(variant)).Observe(duration.Seconds())
	sommelier.Logger.Debug("Embedding received", "provider", e.provider, "variant", variant, "dims", len(vec), "duration", duration)
	return vec, nil
}
