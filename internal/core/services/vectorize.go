package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/regwatch-labs/regrag-cli/internal/chunker"
	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driving"
	"github.com/regwatch-labs/regrag-cli/internal/logger"
	"github.com/regwatch-labs/regrag-cli/internal/pricing"
)

// Ensure VectorizeService implements the interface.
var _ driving.VectorizeService = (*VectorizeService)(nil)

// storeBatchSize is the number of records written to the vector store
// per call.
const storeBatchSize = 100

// VectorizeService chunks stored articles, embeds the chunks and
// writes them to the vector store.
type VectorizeService struct {
	articles driven.ArticleStore
	splitter *chunker.Splitter
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewVectorizeService creates a vectorization service.
func NewVectorizeService(
	articles driven.ArticleStore,
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *VectorizeService {
	return &VectorizeService{
		articles: articles,
		splitter: splitter,
		embedder: embedder,
		store:    store,
	}
}

// Vectorize runs the pipeline: load articles, chunk, estimate cost,
// then (unless DryRun) embed and store. Articles that fail chunking
// are skipped, not fatal.
func (s *VectorizeService) Vectorize(
	ctx context.Context, opts driving.VectorizeOptions,
) (*driving.VectorizeReport, error) {
	articles, err := s.articles.ListVectorizable(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}

	report := &driving.VectorizeReport{Articles: len(articles)}
	if len(articles) == 0 {
		logger.Info("no articles to vectorize")
		return report, nil
	}

	logger.Section("chunking")
	var chunks []domain.Chunk
	for _, article := range articles {
		meta := domain.ChunkMetadata{
			ArticleID: article.ID,
			Source:    article.Source,
			Title:     article.Title,
			URL:       article.URL,
			Date:      article.DatePublished,
			Language:  article.Language,
		}
		articleChunks, err := s.splitter.Split(article.Content, meta)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyContent) {
				logger.Warn("skipping article %d (%s): empty content", article.ID, article.URL)
				report.Articles--
				continue
			}
			return nil, fmt.Errorf("chunking article %d: %w", article.ID, err)
		}
		chunks = append(chunks, articleChunks...)
	}

	report.Chunks = len(chunks)
	for _, c := range chunks {
		report.TotalTokens += c.TokenCount
	}
	report.EstimatedCostUSD = pricing.EstimateCost(report.TotalTokens, s.embedder.ModelName())

	logger.Info("%d articles -> %d chunks, %d tokens (est. $%.4f)",
		report.Articles, report.Chunks, report.TotalTokens, report.EstimatedCostUSD)

	if opts.DryRun {
		return report, nil
	}

	if opts.Reset {
		logger.Info("resetting collection")
		if err := s.store.Reset(ctx); err != nil {
			return nil, fmt.Errorf("resetting collection: %w", err)
		}
	}

	logger.Section("embedding")
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			ID:        uuid.NewString(),
			Embedding: embeddings[i],
			Text:      c.Text,
			Metadata:  c.Metadata,
		}
	}

	logger.Section("storing")
	for start := 0; start < len(records); start += storeBatchSize {
		end := start + storeBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.store.Add(ctx, records[start:end]); err != nil {
			return nil, fmt.Errorf("storing records %d-%d: %w", start, end-1, err)
		}
		report.Stored = end
		logger.Debug("stored %d/%d records", end, len(records))
	}

	report.Usage = s.embedder.UsageStats()
	return report, nil
}
