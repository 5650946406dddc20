// Package mongodb provides a MongoDB-backed document store. Each logical
// collection maps to one Mongo collection and the document key is stored
// as _id.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/intelliconsult/internal/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps a Mongo client bound to one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ docstore.Store = (*Store)(nil)

// Index describes one secondary index created by EnsureIndexes.
type Index struct {
	Collection string
	Field      string
	Unique     bool
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the given single-field ascending indexes.
func (s *Store) EnsureIndexes(ctx context.Context, indexes []Index) error {
	for _, idx := range indexes {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: idx.Field, Value: 1}},
			Options: options.Index().SetUnique(idx.Unique),
		}
		if _, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index %s.%s: %w", idx.Collection, idx.Field, err)
		}
	}
	return nil
}

// Get implements docstore.Store.
func (s *Store) Get(ctx context.Context, collection, key string, out any) (bool, error) {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s/%s: %w", collection, key, err)
	}
	return true, nil
}

// Put implements docstore.Store. The document is re-encoded with _id set
// to key so callers need not carry a Mongo-specific field.
func (s *Store) Put(ctx context.Context, collection, key string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}
	var body bson.M
	if err := bson.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}
	body["_id"] = key

	_, err = s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": key}, body, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", collection, key, err)
	}
	return nil
}

// Find implements docstore.Store.
func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter, each func(docstore.Decoder) error) error {
	cursor, err := s.db.Collection(collection).Find(ctx, toBSON(filter),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		if err := each(cursor.Decode); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return nil
}

// Count implements docstore.Store.
func (s *Store) Count(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func toBSON(filter docstore.Filter) bson.M {
	if len(filter) == 0 {
		return bson.M{}
	}
	return bson.M(filter)
}
