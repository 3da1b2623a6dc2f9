package driven

import (
	"context"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Local models via OpenAI-compatible inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// On success the service's usage counter is incremented by the
	// tokens billed for the call. Failures surface as ServiceError.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per input text, in input
	// order. A single item's failure substitutes a zero-vector of the
	// configured dimensionality at that position and never aborts the
	// rest of the batch; only context cancellation stops the loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1536, 3072).
	// This must match the vector store's configured dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// UsageStats reports the cumulative tokens billed on this
	// instance and the cost estimate derived from them.
	UsageStats() domain.UsageStats

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
