package embedder

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the embedding backend could not be reached
// or returned no usable vector. Callers treat it as fatal for the current
// request or row, never for the whole batch.
var ErrUnavailable = errors.New("embedder unavailable")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
