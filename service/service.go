// Package service builds the recommendation engine from configuration.
package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"sommelier"
	"sommelier/config"
	"sommelier/dataset"
	"sommelier/embedding"
	"sommelier/localstore"
	"sommelier/pgstore"
	"sommelier/query"
)

// New loads the dataset and connects the embedder. Any error here means the
// process must not serve requests.
func New(ctx context.Context, cfg config.Config) (*query.Engine, error) {
	src, err := Source(ctx, cfg)
	if err != nil {
		return nil, err
	}
	data, err := dataset.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	embedder, err := Embedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return query.New(data, embedder, cfg.ResultCount), nil
}

// Source picks the dataset source named by cfg.Dataset.Source.
func Source(ctx context.Context, cfg config.Config) (dataset.Source, error) {
	switch cfg.Dataset.Source {
	case config.SourceFile:
		return dataset.CSV{Opener: dataset.File(cfg.Dataset.Path)}, nil
	case config.SourceS3:
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", err, sommelier.ErrSourceUnavailable)
		}
		return dataset.CSV{Opener: dataset.S3Object{
			Client: dataset.NewS3Client(awsCfg),
			Bucket: cfg.Dataset.Bucket,
			Key:    cfg.Dataset.Key,
		}}, nil
	case config.SourceChromem:
		return localstore.Source{Path: cfg.Dataset.Path}, nil
	case config.SourcePostgres:
		return pgstore.Source{URL: cfg.Dataset.DatabaseURL, Table: cfg.Dataset.Table}, nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

// Embedder builds the configured provider wrapped with metrics.
func Embedder(ctx context.Context, cfg config.Config) (embedding.Embedder, error) {
	models := Models(cfg)
	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		e := embedding.NewOpenAI(embedding.OpenAIConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.APIURL,
			Models:  models,
		})
		return embedding.NewInstrumented(e, config.ProviderOpenAI), nil
	case config.ProviderBedrock:
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, err
		}
		e := embedding.NewBedrock(bedrockruntime.NewFromConfig(awsCfg), models)
		return embedding.NewInstrumented(e, config.ProviderBedrock), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// Models fills unset variants with the provider defaults.
func Models(cfg config.Config) embedding.Models {
	search, similarity := embedding.OpenAISearchModel, embedding.OpenAISimilarityModel
	if cfg.Embedding.Provider == config.ProviderBedrock {
		search, similarity = embedding.TitanModel, embedding.TitanModel
	}
	if cfg.Embedding.SearchModel != "" {
		search = cfg.Embedding.SearchModel
	}
	if cfg.Embedding.SimilarityModel != "" {
		similarity = cfg.Embedding.SimilarityModel
	}
	return embedding.Models{
		embedding.VariantSearch:     search,
		embedding.VariantSimilarity: similarity,
	}
}

func loadAWS(ctx context.Context, cfg config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
