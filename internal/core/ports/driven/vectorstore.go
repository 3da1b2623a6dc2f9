package driven

import (
	"context"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

// VectorStore persists (id, embedding, text, metadata) tuples in a
// named collection and answers cosine-distance similarity queries.
//
// Dimension consistency is the store's invariant: records and query
// vectors whose length differs from the collection's configured
// dimensionality are rejected with ErrDimensionMismatch.
type VectorStore interface {
	// Add appends records to the collection. A record whose ID
	// already exists fails the whole call with ErrDuplicateID.
	Add(ctx context.Context, records []domain.VectorRecord) error

	// Search returns up to n nearest records by cosine distance,
	// ascending (most similar first), optionally restricted to
	// records matching the single-field equality filter. An empty
	// collection or a filter matching nothing yields an empty slice,
	// not an error.
	Search(ctx context.Context, query []float32, n int, where *domain.MetadataFilter) ([]domain.VectorHit, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)

	// GetAll returns all records (without embeddings), or the first
	// limit records when limit > 0.
	GetAll(ctx context.Context, limit int) ([]domain.StoredRecord, error)

	// Reset deletes and recreates the collection under the same
	// name. Idempotent; a missing collection is a no-op on delete.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
