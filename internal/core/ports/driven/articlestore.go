package driven

import (
	"context"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

// ArticleStore is the relational store for scraped articles. Scraping
// adapters write into it; the vectorization run reads from it.
type ArticleStore interface {
	// Save inserts an article. An article whose URL is already stored
	// is skipped silently; the bool reports whether a row was
	// inserted. Articles with empty content are never stored.
	Save(ctx context.Context, article domain.Article) (bool, error)

	// ListVectorizable returns all articles with non-empty content,
	// ordered by id.
	ListVectorizable(ctx context.Context) ([]domain.Article, error)

	// Count returns the total number of stored articles.
	Count(ctx context.Context) (int, error)

	// CountBySource returns article counts keyed by source code.
	CountBySource(ctx context.Context) (map[string]int, error)

	// Close releases resources.
	Close() error
}
