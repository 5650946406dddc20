// Package docstore defines the document store contract shared by the
// Postgres, MongoDB and in-memory backends.
package docstore

import (
	"context"
	"fmt"
)

// Filter selects documents whose top-level fields equal the given values.
// An empty filter selects every document in the collection.
type Filter map[string]any

// Decoder decodes the current document into v.
type Decoder func(v any) error

// Store persists JSON-shaped documents under string keys, grouped by
// collection. Absent documents are reported with found=false, not errors.
type Store interface {
	// Get decodes the document stored under key into out.
	Get(ctx context.Context, collection, key string, out any) (found bool, err error)
	// Put inserts or fully replaces the document stored under key.
	Put(ctx context.Context, collection, key string, doc any) error
	// Find calls each for every matching document, in key order.
	Find(ctx context.Context, collection string, filter Filter, each func(Decoder) error) error
	// Count returns the number of matching documents.
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// FindAll decodes every matching document into a slice of T.
func FindAll[T any](ctx context.Context, s Store, collection string, filter Filter) ([]T, error) {
	var out []T
	err := s.Find(ctx, collection, filter, func(decode Decoder) error {
		var v T
		if err := decode(&v); err != nil {
			return fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
