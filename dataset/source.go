package dataset

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// File opens a local file.
type File string

func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(string(f))
}

func (f File) String() string { return "file://" + string(f) }

// GetObjectAPI is the part of the s3 client the loader needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Object reads one object from a bucket.
type S3Object struct {
	Client GetObjectAPI
	Bucket string
	Key    string
}

func (o S3Object) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := o.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.Bucket),
		Key:    aws.String(o.Key),
	})
	if err != nil {
		return nil, err
	}
	if out.Body == nil {
		return nil, fmt.Errorf("object %s has no body", o)
	}
	return out.Body, nil
}

func (o S3Object) String() string { return "s3://" + o.Bucket + "/" + o.Key }

// NewS3Client builds an s3 client with the retry count the original
// deployment used.
func NewS3Client(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.RetryMaxAttempts = 3
	})
}
