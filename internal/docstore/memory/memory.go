// Package memory provides an in-process docstore.Store used by tests and
// the "memory" store driver.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/jonathan/intelliconsult/internal/docstore"
)

// Store keeps documents as encoded JSON so callers never share memory
// with stored values.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

var _ docstore.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

// Get implements docstore.Store.
func (s *Store) Get(_ context.Context, collection, key string, out any) (bool, error) {
	s.mu.RLock()
	data, ok := s.collections[collection][key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}
	return true, nil
}

// Put implements docstore.Store.
func (s *Store) Put(_ context.Context, collection, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		s.collections[collection] = docs
	}
	docs[key] = data
	return nil
}

// Find implements docstore.Store.
func (s *Store) Find(_ context.Context, collection string, filter docstore.Filter, each func(docstore.Decoder) error) error {
	matches, err := s.match(collection, filter)
	if err != nil {
		return err
	}
	for _, data := range matches {
		doc := data
		if err := each(func(v any) error { return json.Unmarshal(doc, v) }); err != nil {
			return err
		}
	}
	return nil
}

// Count implements docstore.Store.
func (s *Store) Count(_ context.Context, collection string, filter docstore.Filter) (int64, error) {
	matches, err := s.match(collection, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

// Close implements docstore.Store.
func (s *Store) Close(context.Context) error {
	return nil
}

// match returns the encoded documents that satisfy filter, ordered by key.
func (s *Store) match(collection string, filter docstore.Filter) ([][]byte, error) {
	want, err := normalize(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out [][]byte
	for _, k := range keys {
		if len(want) > 0 {
			var fields map[string]any
			if err := json.Unmarshal(docs[k], &fields); err != nil {
				return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, k, err)
			}
			if !contains(fields, want) {
				continue
			}
		}
		out = append(out, docs[k])
	}
	return out, nil
}

// normalize round-trips the filter through JSON so its values compare
// equal to decoded document fields.
func normalize(filter docstore.Filter) (map[string]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode filter: %w", err)
	}
	return out, nil
}

func contains(fields, want map[string]any) bool {
	for k, v := range want {
		if !reflect.DeepEqual(fields[k], v) {
			return false
		}
	}
	return true
}
