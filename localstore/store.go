package localstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"sommelier"
	"sommelier/dataset"
)

// Collections holding the two embedding spaces. Documents share ids, the
// id is the row index of the source file.
const (
	SearchCollection     = "wine-reviews-search"
	SimilarityCollection = "wine-reviews-similarity"
)

var errNoEmbedding = errors.New("documents must carry a precomputed embedding")

// noEmbedding keeps chromem from calling out to an embedding API.
func noEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errNoEmbedding
}

// Init local review database
func Init() (*chromem.DB, error) {
	log := sommelier.Logger
	db := chromem.NewDB()

	for _, name := range []string{SearchCollection, SimilarityCollection} {
		_, err := db.CreateCollection(name, nil, noEmbedding)
		if err != nil {
			log.Error("Error creating collection", "collection", name, "error", err)
			return nil, err
		}
	}
	return db, nil
}

func Load(path string) (*chromem.DB, error) {
	log := sommelier.Logger
	db := chromem.NewDB()

	err := db.ImportFromFile(path, "")
	if err != nil {
		log.Error("Error loading collection", "path", path, "error", err)
		return nil, err
	}
	return db, nil
}

// Store Database, gzip compressed when path ends in .gz
func Store(db *chromem.DB, path string) error {
	log := sommelier.Logger
	compress := strings.HasSuffix(path, ".gz")
	log.Info("Storing Database", "path", path, "compress", compress)
	return db.ExportToFile(path, compress, "")
}

// Source reads a gob export written by Store. chromem normalizes vectors on
// insert, which leaves cosine rankings unchanged.
type Source struct {
	Path string
}

func (s Source) String() string { return "chromem://" + s.Path }

func (s Source) Records(ctx context.Context) ([]dataset.Record, error) {
	db, err := Load(s.Path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w: %w", s.Path, err, sommelier.ErrSourceUnavailable)
	}
	search := db.GetCollection(SearchCollection, noEmbedding)
	similarity := db.GetCollection(SimilarityCollection, noEmbedding)
	if search == nil || similarity == nil {
		return nil, fmt.Errorf("%s: missing collection: %w", s.Path, sommelier.ErrDataFormat)
	}
	if search.Count() != similarity.Count() {
		return nil, fmt.Errorf("%s: %d search documents but %d similarity documents: %w",
			s.Path, search.Count(), similarity.Count(), sommelier.ErrDataFormat)
	}

	records := make([]dataset.Record, search.Count())
	for i := range records {
		id := strconv.Itoa(i)
		sd, err := search.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: search document %s: %w: %w", s.Path, id, err, sommelier.ErrDataFormat)
		}
		md, err := similarity.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: similarity document %s: %w: %w", s.Path, id, err, sommelier.ErrDataFormat)
		}
		records[i] = dataset.Record{
			Text:                sd.Content,
			SearchEmbedding:     sd.Embedding,
			SimilarityEmbedding: md.Embedding,
		}
	}
	return records, nil
}
