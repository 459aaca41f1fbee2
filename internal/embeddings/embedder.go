package embeddings

import (
	"context"
	"errors"
)

// ErrProviderUnavailable marks embedding failures caused by the remote
// provider being unreachable or unauthorized. Callers decide whether to
// retry, fall back to the local embedder, or abort.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts, one vector per input
	// in the same order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
