package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/w-h-a/shopchat/embedder"
	"github.com/w-h-a/shopchat/vectorstore"
)

// Row is one decoded catalog row. Sku is the natural key when present;
// Extra holds any columns the pipeline does not interpret.
type Row struct {
	Sku         string            `json:"sku,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category,omitempty"`
	Brand       string            `json:"brand,omitempty"`
	Price       string            `json:"price,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

type RowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Summary struct {
	RowsTotal    int          `json:"rows_total"`
	RowsIngested int          `json:"rows_ingested"`
	RowsFailed   int          `json:"rows_failed"`
	Failures     []RowFailure `json:"failure_reasons,omitempty"`
}

// Pipeline embeds catalog rows and upserts them into the vector store.
// Partial success is the contract: a row that fails to embed or persist
// lands in the summary's failure list and never aborts the batch.
type Pipeline struct {
	embedder embedder.Embedder
	store    vectorstore.VectorStore
}

func (p *Pipeline) Run(ctx context.Context, rows []Row) Summary {
	summary := Summary{RowsTotal: len(rows)}

	batchId := uuid.New().String()
	assigned := 0

	for i, row := range rows {
		if err := p.ingestRow(ctx, row, batchId, &assigned); err != nil {
			summary.RowsFailed++
			summary.Failures = append(summary.Failures, RowFailure{
				Row:    i,
				Reason: err.Error(),
			})
			slog.WarnContext(ctx, "catalog row skipped", "row", i, "error", err)
			continue
		}
		summary.RowsIngested++
	}

	slog.InfoContext(ctx, "catalog batch ingested",
		"batch", batchId,
		"total", summary.RowsTotal,
		"ingested", summary.RowsIngested,
		"failed", summary.RowsFailed,
	)

	return summary
}

func (p *Pipeline) ingestRow(ctx context.Context, row Row, batchId string, assigned *int) error {
	if len(strings.TrimSpace(row.Title)) == 0 || len(strings.TrimSpace(row.Description)) == 0 {
		return fmt.Errorf("missing title or description")
	}

	vec, err := p.embedder.Embed(ctx, row.Title+" "+row.Description)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(row.Sku)
	if len(id) == 0 {
		*assigned++
		id = fmt.Sprintf("%s-%d", batchId, *assigned)
	}

	product := vectorstore.Product{
		Id:          id,
		Title:       row.Title,
		Description: row.Description,
		Category:    NormalizeCategory(row.Category),
		Brand:       row.Brand,
		Price:       row.Price,
		Metadata:    row.Extra,
		Embedding:   vec,
	}

	return p.store.Upsert(ctx, product)
}

// NormalizeCategory flattens a raw category tree such as
// `["Pet Supplies >> Grooming"]` into `Pet Supplies > Grooming`.
func NormalizeCategory(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), `[]"`)
	return strings.ReplaceAll(trimmed, ">>", ">")
}

func NewPipeline(embedder embedder.Embedder, store vectorstore.VectorStore) *Pipeline {
	if embedder == nil {
		panic("embedder is required")
	}

	if store == nil {
		panic("vector store is required")
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
	}
}
