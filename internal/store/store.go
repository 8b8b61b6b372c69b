package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collections
const (
	Products = "products"
	Users    = "users"
	Orders   = "orders"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrClosed         = errors.New("store is closed")
)

// Write is one put or delete inside a Commit.
type Write struct {
	Collection string
	ID         string
	Record     []byte
	Delete     bool
}

// Store is the persistence collaborator: a record store keyed by collection
// and id. Records are opaque JSON documents.
type Store interface {
	// Load returns every record of a collection.
	Load(ctx context.Context, collection string) (map[string][]byte, error)
	// Get returns one record or ErrRecordNotFound.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	// Save replaces the whole collection with records.
	Save(ctx context.Context, collection string, records map[string][]byte) error
	// Commit applies all writes atomically or none of them.
	Commit(ctx context.Context, writes ...Write) error
	Close() error
}

// HealthChecker is implemented by stores that can probe their backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheck probes s when it supports it.
func HealthCheck(ctx context.Context, s Store) error {
	if hc, ok := s.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Put encodes v as the record for (collection, id).
func Put(collection, id string, v any) (Write, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Write{}, fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	return Write{Collection: collection, ID: id, Record: data}, nil
}

func Delete(collection, id string) Write {
	return Write{Collection: collection, ID: id, Delete: true}
}

// Decode unmarshals every record of a loaded collection.
func Decode[T any](records map[string][]byte) (map[string]T, error) {
	out := make(map[string]T, len(records))
	for id, data := range records {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}

// LoadAll loads and decodes a collection in one step.
func LoadAll[T any](ctx context.Context, s Store, collection string) (map[string]T, error) {
	records, err := s.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}
	return Decode[T](records)
}
