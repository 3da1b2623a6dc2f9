package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driving"
	"github.com/regwatch-labs/regrag-cli/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// Retrieval parameters.
const (
	// DefaultNResults is how many nearest records are requested when
	// the caller does not say.
	DefaultNResults = 5

	// maxContextDocuments caps how many retrieved records enter the
	// prompt.
	maxContextDocuments = 3

	// relevanceThreshold is the minimum score, exclusive, a record
	// needs to enter the prompt. Score is (1 - distance) * 100.
	relevanceThreshold = 30.0

	// contextSnippetRunes caps the text of each document placed in the
	// prompt.
	contextSnippetRunes = 1000

	// DefaultMaxOutputTokens bounds the generated answer length.
	DefaultMaxOutputTokens = 1000
)

// Fixed answers for terminal retrieval states.
const (
	// AnswerNoDocuments is returned when the search yields nothing.
	AnswerNoDocuments = "No relevant documents found in the knowledge base."

	// AnswerBelowThreshold is returned when nothing retrieved clears
	// the relevance threshold.
	AnswerBelowThreshold = "The documents found are not relevant enough to answer this question reliably."
)

// systemPrompt instructs the generation model to stay grounded on the
// supplied documents.
const systemPrompt = `You are an assistant specialised in financial regulation. ` +
	`Answer using ONLY the information contained in the documents provided. ` +
	`Cite your sources by referring to the documents as [Document X]. ` +
	`If the documents do not contain the answer, say so. ` +
	`Answer in the same language as the question. Be factual and precise.`

// AskService answers questions grounded on retrieved article chunks.
type AskService struct {
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	llm       driven.LLMService
	maxTokens int
}

// AskOption configures the service.
type AskOption func(*AskService)

// WithMaxOutputTokens bounds the generated answer length.
func WithMaxOutputTokens(n int) AskOption {
	return func(s *AskService) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// NewAskService creates a question-answering service.
func NewAskService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	opts ...AskOption,
) *AskService {
	s := &AskService{
		embedder:  embedder,
		store:     store,
		llm:       llm,
		maxTokens: DefaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score converts a cosine distance into the 0-100 relevance scale.
func Score(distance float64) float64 {
	return (1 - distance) * 100
}

// Ask embeds the query, retrieves the nearest chunks, gates them on
// the relevance threshold and generates a grounded answer. The two
// terminal retrieval states return fixed answers without calling the
// generation model; embedding and generation failures propagate.
func (s *AskService) Ask(
	ctx context.Context, query string, opts domain.AskOptions,
) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}

	n := opts.NResults
	if n <= 0 {
		n = DefaultNResults
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.store.Search(ctx, embedding, n, domain.SourceFilter(opts.SourceFilter))
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	if len(hits) == 0 {
		logger.Info("no documents retrieved")
		return &domain.Answer{Answer: AnswerNoDocuments}, nil
	}

	if len(hits) > maxContextDocuments {
		hits = hits[:maxContextDocuments]
	}

	// Threshold is strict: a score of exactly 30 does not pass.
	var relevant []domain.VectorHit
	for _, hit := range hits {
		score := Score(hit.Distance)
		logger.Debug("hit %s: score %.1f", hit.ID, score)
		if score > relevanceThreshold {
			relevant = append(relevant, hit)
		}
	}

	if len(relevant) == 0 {
		logger.Info("no documents above relevance threshold")
		return &domain.Answer{Answer: AnswerBelowThreshold}, nil
	}

	userPrompt := buildUserPrompt(query, relevant)

	answer, err := s.llm.Generate(ctx, systemPrompt, userPrompt,
		driven.GenerateOptions{MaxTokens: s.maxTokens})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	sources := make([]domain.SourceInfo, len(relevant))
	for i, hit := range relevant {
		sources[i] = domain.SourceInfo{
			Source: hit.Metadata.Source,
			Title:  hit.Metadata.Title,
			URL:    hit.Metadata.URL,
			Score:  Score(hit.Distance),
		}
	}

	return &domain.Answer{
		Answer:      answer,
		SourcesUsed: len(relevant),
		SourcesInfo: sources,
		Model:       s.llm.ModelName(),
	}, nil
}

// Search runs the retrieval step alone.
func (s *AskService) Search(
	ctx context.Context, query string, n int, source string,
) ([]domain.VectorHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}
	if n <= 0 {
		n = DefaultNResults
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return s.store.Search(ctx, embedding, n, domain.SourceFilter(source))
}

// buildUserPrompt assembles the numbered context blocks, in retrieved
// order, followed by the question.
func buildUserPrompt(query string, hits []domain.VectorHit) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, hit := range hits {
		date := hit.Metadata.Date
		if date == "" {
			date = "N/A"
		}
		fmt.Fprintf(&b, "[Document %d]\nSource: %s\nTitle: %s\nDate: %s\nContent: %s\n\n",
			i+1, hit.Metadata.Source, hit.Metadata.Title, date, snippet(hit.Text))
	}
	fmt.Fprintf(&b, "Question: %s", query)
	return b.String()
}

// snippet truncates text to the per-document context budget.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= contextSnippetRunes {
		return text
	}
	return string(runes[:contextSnippetRunes])
}
