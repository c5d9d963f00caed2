package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gotest.tools/v3/assert"

	"sommelier"
	"sommelier/dataset"
)

const testCSV = "testdata/reviews.csv"

func TestLoadFile(t *testing.T) {
	d, err := dataset.Load(context.Background(), dataset.CSV{Opener: dataset.File(testCSV)})
	assert.NilError(t, err)

	assert.Equal(t, d.Len(), 3)
	assert.Equal(t, d.SimilarityDims(), 3)
	assert.Equal(t, d.SearchDims(), 2)
	assert.Equal(t, d.At(0).Text, "Crisp apple and citrus, a lively Riesling.")
	assert.DeepEqual(t, d.At(2).SearchEmbedding, []float32{-0.2, 0.5})
	assert.DeepEqual(t, d.At(1).SimilarityEmbedding, []float32{0, 1, 0})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := dataset.Load(context.Background(), dataset.CSV{Opener: dataset.File("testdata/nope.csv")})
	assert.Assert(t, errors.Is(err, sommelier.ErrSourceUnavailable))
	assert.Assert(t, errors.Is(err, fs.ErrNotExist))
}

func TestParseCSVBrokenStream(t *testing.T) {
	body := io.MultiReader(
		strings.NewReader("0,curie_similarity,curie_search\n\"Jammy plum\",\"[0.5, 0.5]\",\"[1, 0]\"\n"),
		iotest.ErrReader(errors.New("connection reset by peer")),
	)
	_, err := dataset.ParseCSV(body)
	assert.Assert(t, errors.Is(err, sommelier.ErrSourceUnavailable), "got %v", err)
	assert.Assert(t, !errors.Is(err, sommelier.ErrDataFormat))
	assert.ErrorContains(t, err, "connection reset by peer")
}

func TestParseCSVWrongFieldCount(t *testing.T) {
	_, err := dataset.ParseCSV(strings.NewReader("0,curie_similarity,curie_search\n\"text\",\"[1]\"\n"))
	assert.Assert(t, errors.Is(err, sommelier.ErrDataFormat), "got %v", err)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "empty file",
			input: "",
		},
		{
			name:  "missing search column",
			input: "0,curie_similarity\n\"text\",\"[1]\"\n",
		},
		{
			name:  "malformed array",
			input: "0,curie_similarity,curie_search\n\"text\",\"[1, 2\",\"[1]\"\n",
		},
		{
			name:  "python literal that is not an array",
			input: "0,curie_similarity,curie_search\n\"text\",\"None\",\"[1]\"\n",
		},
		{
			name:  "empty array",
			input: "0,curie_similarity,curie_search\n\"text\",\"[]\",\"[1]\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.ParseCSV(strings.NewReader(tt.input))
			assert.Assert(t, errors.Is(err, sommelier.ErrDataFormat), "got %v", err)
		})
	}
}

func TestNewRejectsInconsistentDimensions(t *testing.T) {
	tests := []struct {
		name    string
		records []dataset.Record
	}{
		{
			name: "no records",
		},
		{
			name: "search dims differ",
			records: []dataset.Record{
				{Text: "a", SearchEmbedding: []float32{1, 0}, SimilarityEmbedding: []float32{1}},
				{Text: "b", SearchEmbedding: []float32{1}, SimilarityEmbedding: []float32{1}},
			},
		},
		{
			name: "similarity missing",
			records: []dataset.Record{
				{Text: "a", SearchEmbedding: []float32{1, 0}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.New(tt.records)
			assert.Assert(t, errors.Is(err, sommelier.ErrDataFormat))
		})
	}
}

type fakeS3 struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = *params.Bucket
	f.key = *params.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(f.body))}, nil
}

func TestLoadS3(t *testing.T) {
	client := &fakeS3{body: "0,curie_similarity,curie_search\n\"Jammy plum\",\"[0.5, 0.5]\",\"[1, 0]\"\n"}
	src := dataset.CSV{Opener: dataset.S3Object{Client: client, Bucket: "sommelier-ai", Key: "reviews.csv"}}

	d, err := dataset.Load(context.Background(), src)
	assert.NilError(t, err)
	assert.Equal(t, d.Len(), 1)
	assert.Equal(t, d.At(0).Text, "Jammy plum")
	assert.Equal(t, client.bucket, "sommelier-ai")
	assert.Equal(t, client.key, "reviews.csv")
}

func TestLoadS3Unavailable(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	src := dataset.CSV{Opener: dataset.S3Object{Client: client, Bucket: "b", Key: "k"}}

	_, err := dataset.Load(context.Background(), src)
	assert.Assert(t, errors.Is(err, sommelier.ErrSourceUnavailable))
	assert.ErrorContains(t, err, "access denied")
}
