package localstore

import (
	"context"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"sommelier"
	"sommelier/dataset"
)

// Add puts every record into both collections, ids are the record positions.
// ***** IDs must be unique *****
// Otherwise documents will be overwritten
func Add(ctx context.Context, db *chromem.DB, records []dataset.Record) error {
	log := sommelier.Logger

	search := db.GetCollection(SearchCollection, noEmbedding)
	similarity := db.GetCollection(SimilarityCollection, noEmbedding)

	searchDocs := make([]chromem.Document, 0, len(records))
	similarityDocs := make([]chromem.Document, 0, len(records))
	for i, r := range records {
		id := strconv.Itoa(i)
		log.Debug("Adding review into chromem", "id", id, "content", r.Text)
		searchDocs = append(searchDocs, chromem.Document{
			ID:        id,
			Content:   r.Text,
			Embedding: r.SearchEmbedding,
		})
		similarityDocs = append(similarityDocs, chromem.Document{
			ID:        id,
			Content:   r.Text,
			Embedding: r.SimilarityEmbedding,
		})
	}
	if err := search.AddDocuments(ctx, searchDocs, runtime.NumCPU()); err != nil {
		log.Error("Error adding search documents", "error", err)
		return err
	}
	if err := similarity.AddDocuments(ctx, similarityDocs, runtime.NumCPU()); err != nil {
		log.Error("Error adding similarity documents", "error", err)
		return err
	}
	log.Info("Reviews added", "count", len(records))
	return nil
}
