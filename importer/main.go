// Command importer converts the precomputed embeddings CSV into the stores
// the recommendation service can load faster: a chromem gob export and/or a
// Postgres pgvector table.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v5"

	"sommelier"
	"sommelier/dataset"
	"sommelier/localstore"
	"sommelier/pgstore"
)

func main() {
	csvPath := flag.String("csv", "./testdata/wine_tasting_notes_embeddings__curie_combined.csv", "Embeddings CSV")
	chromemPath := flag.String("chromem", "", "Write a chromem export to this path (.gz compresses)")
	databaseURL := flag.String("postgres", os.Getenv("DATABASE_URL"), "Postgres connection string")
	table := flag.String("table", "wine_reviews", "Postgres table")
	dropTable := flag.Bool("drop", false, "Drop the Postgres table first")
	truncate := flag.Bool("truncate", false, "Replace the rows of an existing Postgres table")
	verbose := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	log := sommelier.Logger
	if *verbose {
		sommelier.SetLevel("debug")
	}
	if *chromemPath == "" && *databaseURL == "" {
		log.Error("Nothing to do, set -chromem and/or -postgres")
		os.Exit(2)
	}

	ctx := context.Background()
	data, err := dataset.Load(ctx, dataset.CSV{Opener: dataset.File(*csvPath)})
	if err != nil {
		os.Exit(1)
	}

	if *chromemPath != "" {
		if err := toChromem(ctx, data, *chromemPath); err != nil {
			log.Error("Chromem import failed", "error", err)
			os.Exit(1)
		}
	}
	if *databaseURL != "" {
		if err := toPostgres(ctx, data, *databaseURL, *table, *dropTable, *truncate); err != nil {
			log.Error("Postgres import failed", "error", err)
			os.Exit(1)
		}
	}
}

func toChromem(ctx context.Context, data *dataset.Dataset, path string) error {
	db, err := localstore.Init()
	if err != nil {
		return err
	}
	if err := localstore.Add(ctx, db, data.Records()); err != nil {
		return err
	}
	return localstore.Store(db, path)
}

func toPostgres(ctx context.Context, data *dataset.Dataset, url, table string, dropTable, truncate bool) error {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if err := pgstore.CreateTable(ctx, conn, table, data.SearchDims(), data.SimilarityDims(), dropTable); err != nil {
		return err
	}
	return pgstore.Insert(ctx, conn, table, data.Records(), truncate)
}
