// Package query ranks the loaded reviews against a natural language query.
package query

import (
	"context"
	"fmt"

	"golang.org/x/exp/slices"

	"sommelier"
	"sommelier/dataset"
	"sommelier/embedding"
)

// Engine is safe for concurrent use: it only reads the dataset.
type Engine struct {
	data     *dataset.Dataset
	embedder embedding.Embedder
	n        int
}

// New returns an engine answering GetRecommendations with n texts per ranking.
// n <= 0 uses sommelier.DefaultResultCount.
func New(data *dataset.Dataset, embedder embedding.Embedder, n int) *Engine {
	if n <= 0 {
		n = sommelier.DefaultResultCount
	}
	return &Engine{data: data, embedder: embedder, n: n}
}

// Match pairs a dataset index with its score for one query.
type Match struct {
	Index int
	Score float64
}

// Search ranks by cosine similarity in the search embedding space, highest first.
func (e *Engine) Search(ctx context.Context, query string, n int) ([]string, error) {
	vec, err := e.embed(ctx, query, embedding.VariantSearch, e.data.SearchDims())
	if err != nil {
		return nil, err
	}
	matches, err := Rank(e.data, vec, searchEmbedding, CosineSimilarity, true)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return e.texts(matches, n), nil
}

// Recommend ranks by cosine distance in the similarity embedding space, closest first.
func (e *Engine) Recommend(ctx context.Context, query string, n int) ([]string, error) {
	vec, err := e.embed(ctx, query, embedding.VariantSimilarity, e.data.SimilarityDims())
	if err != nil {
		return nil, err
	}
	matches, err := Rank(e.data, vec, similarityEmbedding, CosineDistance, false)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return e.texts(matches, n), nil
}

// GetRecommendations runs Search and Recommend independently, one
// embedding call each.
func (e *Engine) GetRecommendations(ctx context.Context, query string) (sommelier.Recommendations, error) {
	log := sommelier.Logger
	log.Info("Query received", "query", query)

	search, err := e.Search(ctx, query, e.n)
	if err != nil {
		return sommelier.Recommendations{}, fmt.Errorf("search: %w", err)
	}
	recommend, err := e.Recommend(ctx, query, e.n)
	if err != nil {
		return sommelier.Recommendations{}, fmt.Errorf("recommend: %w", err)
	}
	log.Debug("Recommendations ready", "search", len(search), "recommend", len(recommend))
	return sommelier.Recommendations{Search: search, Recommend: recommend}, nil
}

func (e *Engine) embed(ctx context.Context, query string, variant embedding.Variant, dims int) ([]float32, error) {
	vec, err := e.embedder.Embed(ctx, query, variant)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", variant, err)
	}
	if len(vec) != dims {
		return nil, fmt.Errorf("embed %s: got %d dimensions, dataset has %d: %w",
			variant, len(vec), dims, sommelier.ErrUpstream)
	}
	return vec, nil
}

func (e *Engine) texts(matches []Match, n int) []string {
	if n < 0 {
		n = 0
	}
	if n > len(matches) {
		n = len(matches)
	}
	out := make([]string, 0, n)
	for _, m := range matches[:n] {
		out = append(out, e.data.At(m.Index).Text)
	}
	return out
}

func searchEmbedding(r *dataset.Record) []float32 { return r.SearchEmbedding }

func similarityEmbedding(r *dataset.Record) []float32 { return r.SimilarityEmbedding }

// Rank scores every record against vec and returns the matches ordered by
// score, descending or ascending. Equal scores keep dataset order. The
// result is freshly allocated, the dataset is not touched. vec must have the
// dimension of the selected field.
//
// A zero-magnitude vector scores similarity 0 (distance 1), so it sorts
// among orthogonal records rather than last.
func Rank(data *dataset.Dataset, vec []float32, field func(*dataset.Record) []float32,
	score func(a, b []float32) float64, descending bool) ([]Match, error) {
	records := data.Records()
	matches := make([]Match, len(records))
	for i := range records {
		v := field(&records[i])
		if len(v) != len(vec) {
			return nil, fmt.Errorf("record %d has %d dimensions, query has %d: %w",
				i, len(v), len(vec), sommelier.ErrUpstream)
		}
		matches[i] = Match{Index: i, Score: score(v, vec)}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score == b.Score:
			return 0
		case (a.Score > b.Score) == descending:
			return -1
		default:
			return 1
		}
	})
	return matches, nil
}
