// Package openai provides an embedding service adapter using the
// OpenAI embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
	"github.com/regwatch-labs/regrag-cli/internal/logger"
	"github.com/regwatch-labs/regrag-cli/internal/pricing"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// serviceName identifies this adapter in ServiceError values.
const serviceName = "openai-embeddings"

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "text-embedding-3-small"
	DefaultTimeout    = 60 * time.Second
	DefaultBatchDelay = 100 * time.Millisecond
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for the model.
	Dimensions int

	// BatchDelay is the fixed delay between consecutive calls in
	// EmbedBatch (default: 100ms). Simple rate limiting, not
	// adaptive backoff.
	BatchDelay time.Duration
}

// EmbeddingService generates embeddings using the OpenAI API and
// keeps a running count of the tokens billed on this instance.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	limiter    *rate.Limiter

	mu          sync.Mutex
	totalTokens int
}

// embeddingRequest is the OpenAI API request format.
type embeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

// embeddingResponse is the OpenAI API response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			dimensions = 1536
		}
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
		limiter:    rate.NewLimiter(rate.Every(cfg.BatchDelay), 1),
	}, nil
}

// Embed generates a vector embedding for the given text. The tokens
// billed for the call are added to the instance's usage counter.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model:          s.model,
		Input:          text,
		EncodingFormat: "float",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewServiceError(serviceName, err)
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, domain.NewServiceError(serviceName, fmt.Errorf("decode response: %w", err))
	}

	if embedResp.Error != nil {
		return nil, domain.NewServiceError(serviceName, errors.New(embedResp.Error.Message))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewServiceError(serviceName,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	if len(embedResp.Data) == 0 {
		return nil, domain.NewServiceError(serviceName, errors.New("no embedding returned"))
	}

	s.mu.Lock()
	s.totalTokens += embedResp.Usage.TotalTokens
	s.mu.Unlock()

	embedding := make([]float32, len(embedResp.Data[0].Embedding))
	for i, v := range embedResp.Data[0].Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

// EmbedBatch generates one embedding per input text, in input order.
// A failing item is replaced with a zero-vector of the configured
// dimensionality and the batch continues; only context cancellation
// aborts the loop. A fixed delay is applied between calls.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))

	for i, text := range texts {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		embedding, err := s.Embed(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("embedding %d/%d failed, substituting zero vector: %v", i+1, len(texts), err)
			embeddings[i] = make([]float32, s.dimensions)
			continue
		}

		logger.Debug("embedding %d/%d done", i+1, len(texts))
		embeddings[i] = embedding
	}

	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// UsageStats reports the cumulative tokens billed on this instance
// and the cost estimate derived from them.
func (s *EmbeddingService) UsageStats() domain.UsageStats {
	s.mu.Lock()
	total := s.totalTokens
	s.mu.Unlock()

	return domain.UsageStats{
		TotalTokens:      total,
		EstimatedCostUSD: pricing.EstimateCost(total, s.model),
		Model:            s.model,
	}
}

// Ping validates the service is reachable by checking the /models
// endpoint. A lightweight check that validates the API key without
// running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.NewServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewServiceError(serviceName,
			fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
