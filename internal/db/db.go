// Package db provides a PostgreSQL-backed document store.
//
// Every logical collection lives in one "documents" table keyed by
// (collection, id) with the document body in a JSONB column.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/intelliconsult/internal/docstore"
)

// schemaSQL creates the documents table and its containment index.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_body_idx ON documents USING GIN (body jsonb_path_ops);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ docstore.Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// EnsureSchema creates the documents table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (db *DB) Close(context.Context) error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Get retrieves one document by collection and key
func (db *DB) Get(ctx context.Context, collection, key string, out any) (bool, error) {
	var body []byte
	err := db.pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`,
		collection, key,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s/%s: %w", collection, key, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}
	return true, nil
}

// Put upserts a document, replacing any existing body
func (db *DB) Put(ctx context.Context, collection, key string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET body = $3, updated_at = NOW()`,
		collection, key, body,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", collection, key, err)
	}
	return nil
}

// Find streams the documents whose body contains the filter
func (db *DB) Find(ctx context.Context, collection string, filter docstore.Filter, each func(docstore.Decoder) error) error {
	containment, err := encodeFilter(filter)
	if err != nil {
		return err
	}

	rows, err := db.pool.Query(ctx,
		`SELECT body FROM documents
		 WHERE collection = $1 AND body @> $2::jsonb
		 ORDER BY id`,
		collection, containment,
	)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		if err := each(func(v any) error { return json.Unmarshal(body, v) }); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return nil
}

// Count returns the number of documents whose body contains the filter
func (db *DB) Count(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	containment, err := encodeFilter(filter)
	if err != nil {
		return 0, err
	}

	var n int64
	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = $1 AND body @> $2::jsonb`,
		collection, containment,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

// encodeFilter renders a filter as a JSONB containment operand.
func encodeFilter(filter docstore.Filter) (string, error) {
	if len(filter) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return "", fmt.Errorf("failed to encode filter: %w", err)
	}
	return string(data), nil
}
