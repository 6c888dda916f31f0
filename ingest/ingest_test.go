package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/w-h-a/shopchat/embedder"
	"github.com/w-h-a/shopchat/vectorstore/memory"
)

// fakeEmbedder fails for any text containing one of the poison substrings.
type fakeEmbedder struct {
	poison []string
	calls  []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	for _, p := range f.poison {
		if strings.Contains(text, p) {
			return nil, fmt.Errorf("%w: model rejected input", embedder.ErrUnavailable)
		}
	}
	return []float32{1, 0, 0}, nil
}

func row(sku, title string) Row {
	return Row{Sku: sku, Title: title, Description: "description of " + title}
}

func TestPartialSuccess(t *testing.T) {
	emb := &fakeEmbedder{poison: []string{"broken"}}
	store := memory.NewStore()
	p := NewPipeline(emb, store)

	rows := []Row{
		row("sku-1", "one"),
		row("sku-2", "two"),
		row("sku-3", "broken"),
		row("sku-4", "four"),
		row("sku-5", "five"),
	}

	summary := p.Run(context.Background(), rows)

	if summary.RowsTotal != 5 {
		t.Fatalf("RowsTotal = %d, want 5", summary.RowsTotal)
	}
	if summary.RowsIngested != 4 {
		t.Fatalf("RowsIngested = %d, want 4", summary.RowsIngested)
	}
	if summary.RowsFailed != 1 {
		t.Fatalf("RowsFailed = %d, want 1", summary.RowsFailed)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Row != 2 {
		t.Fatalf("Failures = %+v, want one failure at row 2", summary.Failures)
	}

	count, _ := store.Count(context.Background())
	if count != 4 {
		t.Fatalf("store count = %d, want 4", count)
	}
}

func TestEmbeddingInputJoinsTitleAndDescription(t *testing.T) {
	emb := &fakeEmbedder{}
	p := NewPipeline(emb, memory.NewStore())

	p.Run(context.Background(), []Row{{Sku: "s", Title: "Dog Shampoo", Description: "Arnica"}})

	if len(emb.calls) != 1 || emb.calls[0] != "Dog Shampoo Arnica" {
		t.Fatalf("embed input = %q, want %q", emb.calls, "Dog Shampoo Arnica")
	}
}

func TestSkuBecomesId(t *testing.T) {
	store := memory.NewStore()
	p := NewPipeline(&fakeEmbedder{}, store)

	p.Run(context.Background(), []Row{row("sku-42", "one")})

	got, err := store.Nearest(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if got[0].Id != "sku-42" {
		t.Fatalf("id = %q, want %q", got[0].Id, "sku-42")
	}
}

func TestReingestingSameSkuReplaces(t *testing.T) {
	store := memory.NewStore()
	p := NewPipeline(&fakeEmbedder{}, store)
	ctx := context.Background()

	p.Run(ctx, []Row{row("sku-1", "old title")})
	p.Run(ctx, []Row{row("sku-1", "new title")})

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Fatalf("store count = %d, want 1", count)
	}

	got, _ := store.Nearest(ctx, []float32{1, 0, 0}, 1)
	if got[0].Product.Title != "new title" {
		t.Fatalf("title = %q, want %q", got[0].Product.Title, "new title")
	}
}

func TestRowsWithoutSkuGetDistinctIds(t *testing.T) {
	store := memory.NewStore()
	p := NewPipeline(&fakeEmbedder{}, store)

	summary := p.Run(context.Background(), []Row{
		row("", "one"),
		row("", "two"),
		row("", "three"),
	})

	if summary.RowsIngested != 3 {
		t.Fatalf("RowsIngested = %d, want 3", summary.RowsIngested)
	}

	count, _ := store.Count(context.Background())
	if count != 3 {
		t.Fatalf("store count = %d, want 3 distinct ids", count)
	}
}

func TestRowsWithoutTitleOrDescriptionAreReported(t *testing.T) {
	p := NewPipeline(&fakeEmbedder{}, memory.NewStore())

	summary := p.Run(context.Background(), []Row{
		{Title: "", Description: "desc"},
		{Title: "title", Description: ""},
		row("sku-1", "fine"),
	})

	if summary.RowsIngested != 1 {
		t.Fatalf("RowsIngested = %d, want 1", summary.RowsIngested)
	}
	if summary.RowsFailed != 2 {
		t.Fatalf("RowsFailed = %d, want 2", summary.RowsFailed)
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`["Pet Supplies >> Grooming"]`, "Pet Supplies > Grooming"},
		{"Electronics", "Electronics"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeCategory(tc.raw); got != tc.want {
			t.Fatalf("NormalizeCategory(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

// ingestion must never write a product that failed to embed
func TestFailedRowLeavesNoRecord(t *testing.T) {
	store := memory.NewStore()
	p := NewPipeline(&fakeEmbedder{poison: []string{"bad"}}, store)

	p.Run(context.Background(), []Row{row("sku-1", "bad product")})

	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Fatalf("store count = %d, want 0", count)
	}
}
