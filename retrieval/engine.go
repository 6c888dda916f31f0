package retrieval

import (
	"context"

	"github.com/w-h-a/shopchat/vectorstore"
)

const DefaultK = 2

// Engine ranks stored products against a query vector. The store returns
// candidates pre-sorted by descending similarity; the engine deduplicates
// by product id while preserving the store's order, so equal scores keep
// a stable, repeatable ordering.
type Engine struct {
	store vectorstore.VectorStore
}

func (e *Engine) Retrieve(ctx context.Context, vector []float32, k int) ([]vectorstore.Candidate, error) {
	if k < 1 {
		k = DefaultK
	}

	// over-fetch so dedup can still fill k
	raw, err := e.store.Nearest(ctx, vector, k*2)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	candidates := make([]vectorstore.Candidate, 0, k)

	for _, cand := range raw {
		if seen[cand.Id] {
			continue
		}
		seen[cand.Id] = true

		candidates = append(candidates, cand)
		if len(candidates) == k {
			break
		}
	}

	return candidates, nil
}

// Count reports how many products are currently searchable.
func (e *Engine) Count(ctx context.Context) (int, error) {
	return e.store.Count(ctx)
}

func NewEngine(store vectorstore.VectorStore) *Engine {
	if store == nil {
		panic("vector store is required")
	}

	return &Engine{
		store: store,
	}
}
