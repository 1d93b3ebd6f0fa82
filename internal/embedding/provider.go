package embedding

import "context"

// Provider generates embeddings from text. Implementations must be
// safe for concurrent use and must return a typed error (ErrTimeout or
// ErrUnavailable) on upstream failure rather than a degraded vector.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// EmbedBatch generates embeddings for the given texts, in order.
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
