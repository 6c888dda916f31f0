package retrieval

import (
	"context"
	"reflect"
	"testing"

	"github.com/w-h-a/shopchat/vectorstore"
)

// fakeStore returns a canned candidate list regardless of the query.
type fakeStore struct {
	candidates []vectorstore.Candidate
}

func (f *fakeStore) Upsert(ctx context.Context, product vectorstore.Product) error {
	return nil
}

func (f *fakeStore) Nearest(ctx context.Context, vector []float32, k int) ([]vectorstore.Candidate, error) {
	if len(f.candidates) > k {
		return f.candidates[:k], nil
	}
	return f.candidates, nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error) {
	return len(f.candidates), nil
}

func cand(id string, score float32) vectorstore.Candidate {
	return vectorstore.Candidate{Id: id, Score: score, Product: vectorstore.Product{Id: id}}
}

func ids(candidates []vectorstore.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Id)
	}
	return out
}

func TestRetrieveTopK(t *testing.T) {
	e := NewEngine(&fakeStore{candidates: []vectorstore.Candidate{
		cand("a", 0.9), cand("b", 0.7), cand("c", 0.5),
	}})

	got, err := e.Retrieve(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"a", "b"}) {
		t.Fatalf("Retrieve() ids = %v, want [a b]", ids(got))
	}
}

func TestRetrieveDeduplicates(t *testing.T) {
	e := NewEngine(&fakeStore{candidates: []vectorstore.Candidate{
		cand("a", 0.9), cand("a", 0.9), cand("b", 0.7),
	}})

	got, err := e.Retrieve(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"a", "b"}) {
		t.Fatalf("Retrieve() ids = %v, want [a b]", ids(got))
	}
}

func TestRetrievePreservesStoreOrderOnTies(t *testing.T) {
	e := NewEngine(&fakeStore{candidates: []vectorstore.Candidate{
		cand("x", 0.8), cand("y", 0.8), cand("z", 0.8),
	}})

	for i := 0; i < 5; i++ {
		got, err := e.Retrieve(context.Background(), []float32{1, 0}, 3)
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if !reflect.DeepEqual(ids(got), []string{"x", "y", "z"}) {
			t.Fatalf("Retrieve() ids = %v on run %d, want [x y z]", ids(got), i)
		}
	}
}

func TestRetrieveEmptyStore(t *testing.T) {
	e := NewEngine(&fakeStore{})

	got, err := e.Retrieve(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want nil for empty store", err)
	}
	if len(got) != 0 {
		t.Fatalf("Retrieve() returned %d candidates, want 0", len(got))
	}
}

func TestRetrieveFewerThanK(t *testing.T) {
	e := NewEngine(&fakeStore{candidates: []vectorstore.Candidate{cand("a", 0.9)}})

	got, err := e.Retrieve(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"a"}) {
		t.Fatalf("Retrieve() ids = %v, want [a]", ids(got))
	}
}

func TestRetrieveDefaultsK(t *testing.T) {
	e := NewEngine(&fakeStore{candidates: []vectorstore.Candidate{
		cand("a", 0.9), cand("b", 0.7), cand("c", 0.5),
	}})

	got, err := e.Retrieve(context.Background(), []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != DefaultK {
		t.Fatalf("Retrieve() returned %d candidates, want default %d", len(got), DefaultK)
	}
}
