package driving

import (
	"context"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

// VectorizeReport summarises one vectorization run.
type VectorizeReport struct {
	// Articles is the number of articles processed.
	Articles int

	// Chunks is the number of chunks produced.
	Chunks int

	// TotalTokens is the token count across all chunks.
	TotalTokens int

	// EstimatedCostUSD is the embedding cost estimate for TotalTokens.
	EstimatedCostUSD float64

	// Usage is the embedding client's cumulative usage after the run.
	Usage domain.UsageStats

	// Stored is the number of records written to the vector store.
	Stored int
}

// VectorizeOptions configures a vectorization run.
type VectorizeOptions struct {
	// Reset empties the collection before writing.
	Reset bool

	// DryRun stops after chunking and cost estimation; nothing is
	// embedded or stored.
	DryRun bool
}

// VectorizeService turns stored articles into embedded chunks in the
// vector store.
type VectorizeService interface {
	Vectorize(ctx context.Context, opts VectorizeOptions) (*VectorizeReport, error)
}
