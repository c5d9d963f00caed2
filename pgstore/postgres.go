// Package pgstore keeps the review embeddings in a Postgres table with
// pgvector columns.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"sommelier"
	"sommelier/dataset"
)

func createTableSQL(table string, searchDims, similarityDims int) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id bigserial PRIMARY KEY, content text NOT NULL, "+
		"search_embedding vector(%d) NOT NULL, similarity_embedding vector(%d) NOT NULL)",
		pgx.Identifier{table}.Sanitize(), searchDims, similarityDims)
}

func insertSQL(table string) string {
	return fmt.Sprintf("INSERT INTO %s (content, search_embedding, similarity_embedding) VALUES ($1, $2, $3)",
		pgx.Identifier{table}.Sanitize())
}

func selectSQL(table string) string {
	return fmt.Sprintf("SELECT content, search_embedding, similarity_embedding FROM %s ORDER BY id",
		pgx.Identifier{table}.Sanitize())
}

// Conn is the part of *pgx.Conn the store writes through.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ErrTableNotEmpty is returned by Insert when the table already holds rows
// and replace was not requested.
var ErrTableNotEmpty = errors.New("table is not empty")

func countSQL(table string) string {
	return "SELECT count(*) FROM " + pgx.Identifier{table}.Sanitize()
}

func truncateSQL(table string) string {
	return "TRUNCATE TABLE " + pgx.Identifier{table}.Sanitize() + " RESTART IDENTITY"
}

func CreateTable(ctx context.Context, conn Conn, table string, searchDims, similarityDims int, dropTable bool) error {
	log := sommelier.Logger
	if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}
	if dropTable {
		log.Info("Drop table", "table", table)
		if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{table}.Sanitize()); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	sql := createTableSQL(table, searchDims, similarityDims)
	log.Debug("SQL", "sql", sql)
	if _, err := conn.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Insert writes records in order so that ids follow the source order. A
// table that already has rows is emptied first when replace is set and
// refused with ErrTableNotEmpty otherwise, so a second import never
// duplicates reviews.
func Insert(ctx context.Context, conn Conn, table string, records []dataset.Record, replace bool) error {
	log := sommelier.Logger
	if replace {
		log.Info("Truncate table", "table", table)
		if _, err := conn.Exec(ctx, truncateSQL(table)); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	} else {
		var count int64
		if err := conn.QueryRow(ctx, countSQL(table)).Scan(&count); err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%s has %d rows: %w", table, count, ErrTableNotEmpty)
		}
	}

	sql := insertSQL(table)
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(sql, r.Text, pgvector.NewVector(r.SearchEmbedding), pgvector.NewVector(r.SimilarityEmbedding))
	}
	br := conn.SendBatch(ctx, batch)
	defer br.Close()
	for i := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	log.Info("Reviews inserted", "table", table, "count", len(records))
	return nil
}

// Source reads the whole table ordered by id.
type Source struct {
	URL   string
	Table string
}

func (s Source) String() string { return "postgres table " + s.Table }

func (s Source) Records(ctx context.Context) ([]dataset.Record, error) {
	conn, err := pgx.Connect(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w: %w", err, sommelier.ErrSourceUnavailable)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, selectSQL(s.Table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w: %w", s.Table, err, sommelier.ErrSourceUnavailable)
	}
	defer rows.Close()

	records := make([]dataset.Record, 0)
	for rows.Next() {
		var (
			content            string
			search, similarity pgvector.Vector
		)
		if err := rows.Scan(&content, &search, &similarity); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w: %w", s.Table, len(records), err, sommelier.ErrDataFormat)
		}
		records = append(records, dataset.Record{
			Text:                content,
			SearchEmbedding:     search.Slice(),
			SimilarityEmbedding: similarity.Slice(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s.Table, err, sommelier.ErrSourceUnavailable)
	}
	return records, nil
}
