package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/w-h-a/shopchat/vectorstore"
)

type memoryStore struct {
	options  vectorstore.Options
	products map[string]vectorstore.Product
	order    []string
	dim      int
	mtx      sync.RWMutex
}

func (s *memoryStore) Upsert(ctx context.Context, product vectorstore.Product) error {
	if len(product.Embedding) == 0 {
		return fmt.Errorf("%w: zero-length vector", vectorstore.ErrSchemaMismatch)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.dim == 0 {
		s.dim = len(product.Embedding)
	} else if len(product.Embedding) != s.dim {
		return fmt.Errorf("%w: got %d, store has %d", vectorstore.ErrSchemaMismatch, len(product.Embedding), s.dim)
	}

	cpy := make([]float32, len(product.Embedding))
	copy(cpy, product.Embedding)
	product.Embedding = cpy

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	if _, exists := s.products[product.Id]; !exists {
		s.order = append(s.order, product.Id)
	}

	s.products[product.Id] = product

	return nil
}

func (s *memoryStore) Nearest(ctx context.Context, vector []float32, k int) ([]vectorstore.Candidate, error) {
	if k < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]vectorstore.Candidate, 0, len(s.products))

	// insertion order keeps equal scores deterministic under the stable sort
	for _, id := range s.order {
		product := s.products[id]
		score := vectorstore.CosineSimilarity(vector, product.Embedding)
		candidates = append(candidates, vectorstore.Candidate{
			Id:      product.Id,
			Score:   float32(score),
			Product: product,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	return candidates, nil
}

func (s *memoryStore) Count(ctx context.Context) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.products), nil
}

func NewStore(opts ...vectorstore.Option) vectorstore.VectorStore {
	options := vectorstore.NewOptions(opts...)

	s := &memoryStore{
		options:  options,
		products: map[string]vectorstore.Product{},
		mtx:      sync.RWMutex{},
	}

	return s
}
