package vectorstore

import "time"

// Product is an immutable catalog record. Re-ingesting the same id
// replaces the record wholesale.
type Product struct {
	Id          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category,omitempty"`
	Brand       string            `json:"brand,omitempty"`
	Price       string            `json:"price,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Embedding   []float32         `json:"embedding,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
}

// Candidate pairs a stored product with its similarity to a query vector.
// Higher score means more relevant. Not persisted.
type Candidate struct {
	Id      string  `json:"id"`
	Score   float32 `json:"score"`
	Product Product `json:"product"`
}
