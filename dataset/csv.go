package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"sommelier"
)

// Column names of the precomputed embeddings file.
const (
	TextColumn       = "0"
	SimilarityColumn = "curie_similarity"
	SearchColumn     = "curie_search"
)

// Opener returns a fresh reader over the raw tabular data.
type Opener interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// CSV parses a header CSV with a text column and two serialized
// array columns. Other columns are ignored.
type CSV struct {
	Opener Opener
}

func (c CSV) String() string {
	return fmt.Sprintf("csv(%v)", c.Opener)
}

func (c CSV) Records(ctx context.Context) ([]Record, error) {
	rc, err := c.Opener.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %v: %w: %w", c.Opener, err, sommelier.ErrSourceUnavailable)
	}
	defer rc.Close()
	return ParseCSV(rc)
}

// ParseCSV reads records in file order.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", sommelier.ErrDataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", readError(err))
	}
	textIdx, simIdx, searchIdx := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case TextColumn:
			textIdx = i
		case SimilarityColumn:
			simIdx = i
		case SearchColumn:
			searchIdx = i
		}
	}
	for name, idx := range map[string]int{TextColumn: textIdx, SimilarityColumn: simIdx, SearchColumn: searchIdx} {
		if idx < 0 {
			return nil, fmt.Errorf("missing column %q: %w", name, sommelier.ErrDataFormat)
		}
	}

	records := make([]Record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, readError(err))
		}
		similarity, err := ParseVector(row[simIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d column %s: %w", line, SimilarityColumn, err)
		}
		search, err := ParseVector(row[searchIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d column %s: %w", line, SearchColumn, err)
		}
		records = append(records, Record{
			Text:                row[textIdx],
			SearchEmbedding:     search,
			SimilarityEmbedding: similarity,
		})
	}
	return records, nil
}

// readError tells malformed CSV apart from a stream that broke mid-read.
func readError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %w", err, sommelier.ErrDataFormat)
	}
	return fmt.Errorf("%w: %w", err, sommelier.ErrSourceUnavailable)
}

// ParseVector decodes a serialized numeric array such as "[0.1, -2e-05]".
func ParseVector(cell string) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal([]byte(strings.TrimSpace(cell)), &v); err != nil {
		return nil, fmt.Errorf("not a numeric array: %w: %w", err, sommelier.ErrDataFormat)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("empty numeric array: %w", sommelier.ErrDataFormat)
	}
	return v, nil
}
