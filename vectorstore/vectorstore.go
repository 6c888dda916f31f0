package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrStoreUnavailable reports lost connectivity to the backing store.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrSchemaMismatch reports that a vector's dimension does not match
	// the dimension already persisted in the store.
	ErrSchemaMismatch = errors.New("embedding dimension mismatch")
)

// VectorStore persists product records with their embeddings and answers
// top-k nearest-neighbor queries. Nearest returns candidates pre-sorted by
// descending similarity; duplicates are the caller's problem.
type VectorStore interface {
	Upsert(ctx context.Context, product Product) error
	Nearest(ctx context.Context, vector []float32, k int) ([]Candidate, error)
	Count(ctx context.Context) (int, error)
}
