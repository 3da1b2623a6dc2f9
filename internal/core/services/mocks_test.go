package services

import (
	"context"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

// mockEmbedder is a hand-rolled EmbeddingService double.
type mockEmbedder struct {
	embedFn    func(ctx context.Context, text string) ([]float32, error)
	dimensions int
	model      string
	usage      domain.UsageStats

	embedCalls int
	batchCalls int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		embedFn: func(context.Context, string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
		dimensions: 3,
		model:      "text-embedding-3-small",
	}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls++
	return m.embedFn(ctx, text)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.embedFn(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int               { return m.dimensions }
func (m *mockEmbedder) ModelName() string             { return m.model }
func (m *mockEmbedder) UsageStats() domain.UsageStats { return m.usage }
func (m *mockEmbedder) Ping(context.Context) error    { return nil }
func (m *mockEmbedder) Close() error                  { return nil }

// mockVectorStore is a hand-rolled VectorStore double.
type mockVectorStore struct {
	searchFn func(query []float32, n int, where *domain.MetadataFilter) ([]domain.VectorHit, error)

	added       [][]domain.VectorRecord
	resetCalls  int
	lastWhere   *domain.MetadataFilter
	lastN       int
	searchCalls int
}

func (m *mockVectorStore) Add(_ context.Context, records []domain.VectorRecord) error {
	m.added = append(m.added, records)
	return nil
}

func (m *mockVectorStore) Search(
	_ context.Context, query []float32, n int, where *domain.MetadataFilter,
) ([]domain.VectorHit, error) {
	m.searchCalls++
	m.lastN = n
	m.lastWhere = where
	if m.searchFn == nil {
		return nil, nil
	}
	return m.searchFn(query, n, where)
}

func (m *mockVectorStore) Count(context.Context) (int, error) { return 0, nil }

func (m *mockVectorStore) GetAll(context.Context, int) ([]domain.StoredRecord, error) {
	return nil, nil
}

func (m *mockVectorStore) Reset(context.Context) error {
	m.resetCalls++
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockLLM is a hand-rolled LLMService double.
type mockLLM struct {
	generateFn func(systemPrompt, userPrompt string) (string, error)

	generateCalls    int
	lastSystemPrompt string
	lastUserPrompt   string
	lastMaxTokens    int
}

func (m *mockLLM) Generate(
	_ context.Context, systemPrompt, userPrompt string, opts driven.GenerateOptions,
) (string, error) {
	m.generateCalls++
	m.lastSystemPrompt = systemPrompt
	m.lastUserPrompt = userPrompt
	m.lastMaxTokens = opts.MaxTokens
	if m.generateFn == nil {
		return "generated answer", nil
	}
	return m.generateFn(systemPrompt, userPrompt)
}

func (m *mockLLM) ModelName() string          { return "gpt-5-nano" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockArticleStore is a hand-rolled ArticleStore double.
type mockArticleStore struct {
	articles []domain.Article
}

func (m *mockArticleStore) Save(_ context.Context, a domain.Article) (bool, error) {
	m.articles = append(m.articles, a)
	return true, nil
}

func (m *mockArticleStore) ListVectorizable(context.Context) ([]domain.Article, error) {
	return m.articles, nil
}

func (m *mockArticleStore) Count(context.Context) (int, error) {
	return len(m.articles), nil
}

func (m *mockArticleStore) CountBySource(context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range m.articles {
		counts[a.Source]++
	}
	return counts, nil
}

func (m *mockArticleStore) Close() error { return nil }
