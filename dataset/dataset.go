// Package dataset loads the wine review embeddings once at startup and
// keeps them read-only for the lifetime of the process.
package dataset

import (
	"context"
	"fmt"

	"sommelier"
)

// Record is one review with its two precomputed embeddings.
type Record struct {
	Text                string
	SearchEmbedding     []float32
	SimilarityEmbedding []float32
}

// Source yields all records in source order.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// Dataset is shared by pointer between requests and never written after New.
type Dataset struct {
	records        []Record
	searchDims     int
	similarityDims int
}

// New validates records and wraps them. Every record needs both embeddings and
// each embedding column must have one dimension across all records.
func New(records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no records: %w", sommelier.ErrDataFormat)
	}
	d := &Dataset{
		records:        records,
		searchDims:     len(records[0].SearchEmbedding),
		similarityDims: len(records[0].SimilarityEmbedding),
	}
	for i, r := range records {
		if len(r.SearchEmbedding) == 0 || len(r.SimilarityEmbedding) == 0 {
			return nil, fmt.Errorf("record %d: missing embedding: %w", i, sommelier.ErrDataFormat)
		}
		if len(r.SearchEmbedding) != d.searchDims {
			return nil, fmt.Errorf("record %d: search embedding has %d dimensions, want %d: %w",
				i, len(r.SearchEmbedding), d.searchDims, sommelier.ErrDataFormat)
		}
		if len(r.SimilarityEmbedding) != d.similarityDims {
			return nil, fmt.Errorf("record %d: similarity embedding has %d dimensions, want %d: %w",
				i, len(r.SimilarityEmbedding), d.similarityDims, sommelier.ErrDataFormat)
		}
	}
	return d, nil
}

// Load reads all records from src. The returned errors wrap
// sommelier.ErrSourceUnavailable or sommelier.ErrDataFormat.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	log := sommelier.Logger
	log.Info("Loading dataset", "source", fmt.Sprintf("%v", src))
	records, err := src.Records(ctx)
	if err != nil {
		log.Error("Error loading dataset", "error", err)
		return nil, err
	}
	d, err := New(records)
	if err != nil {
		log.Error("Error validating dataset", "error", err)
		return nil, err
	}
	log.Info("Dataset loaded", "records", d.Len(), "search_dims", d.searchDims, "similarity_dims", d.similarityDims)
	return d, nil
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns the backing slice. Callers must not modify it.
func (d *Dataset) Records() []Record { return d.records }

func (d *Dataset) SearchDims() int { return d.searchDims }

func (d *Dataset) SimilarityDims() int { return d.similarityDims }
