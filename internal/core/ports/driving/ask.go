package driving

import (
	"context"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

// AskService answers a user question grounded on retrieved article
// chunks.
type AskService interface {
	// Ask embeds the query, searches the vector store, filters by
	// relevance score, and generates a grounded answer. Terminal
	// retrieval states (nothing found, nothing relevant enough)
	// return a well-formed Answer with SourcesUsed 0 and no Model;
	// embedding and generation failures return a ServiceError.
	Ask(ctx context.Context, query string, opts domain.AskOptions) (*domain.Answer, error)

	// Search performs the retrieval step alone and returns the raw
	// hits, for ad-hoc inspection.
	Search(ctx context.Context, query string, n int, source string) ([]domain.VectorHit, error)
}
