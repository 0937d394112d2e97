// Package vectorstore defines the named-collection vector store used for notes
// and flashcards, with Chroma, Bolt and in-memory implementations.
package vectorstore

import (
	"context"
	"errors"
)

var (
	ErrCollectionExists   = errors.New("collection already exists")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Record is a single stored document. Metadata values are always strings.
type Record struct {
	ID        string
	Document  string
	Embedding []float32
	Metadata  map[string]string
}

// Store manages named collections.
type Store interface {
	// CreateCollection fails with ErrCollectionExists when the name is taken.
	CreateCollection(ctx context.Context, name string) (Collection, error)
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)
	// GetCollection fails with ErrCollectionNotFound when the name is unknown.
	GetCollection(ctx context.Context, name string) (Collection, error)
	// DeleteCollection fails with ErrCollectionNotFound when the name is unknown.
	DeleteCollection(ctx context.Context, name string) error
	ListCollections(ctx context.Context) ([]string, error)
	Close() error
}

// Collection holds the records of one subject namespace.
type Collection interface {
	Name() string
	Add(ctx context.Context, records ...Record) error
	// Get returns the records with the given ids, or every record when ids is empty.
	// Unknown ids are skipped.
	Get(ctx context.Context, ids ...string) ([]Record, error)
	// Query returns at most k records ordered by descending similarity to embedding.
	Query(ctx context.Context, embedding []float32, k int) ([]Record, error)
	Delete(ctx context.Context, ids ...string) error
	Count(ctx context.Context) (int, error)
}
