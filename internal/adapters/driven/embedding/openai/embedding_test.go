package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
)

// newEmbedServer serves a fake embeddings endpoint. Inputs listed in
// failing get a 500; every other input gets a vector derived from its
// first byte, plus a 7-token usage charge.
func newEmbedServer(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}

		var req struct {
			Input string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if failing[req.Input] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`))
			return
		}

		var first float64
		if len(req.Input) > 0 {
			first = float64(req.Input[0])
		}
		resp := map[string]any{
			"data":  []map[string]any{{"embedding": []float64{first, 1, 2}, "index": 0}},
			"usage": map[string]int{"prompt_tokens": 7, "total_tokens": 7},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestService(t *testing.T, url string) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(Config{
		APIKey:     "sk-test",
		BaseURL:    url,
		Model:      "text-embedding-3-small",
		Dimensions: 3,
		BatchDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingServiceRequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestEmbedTracksUsage(t *testing.T) {
	server := newEmbedServer(t, nil)
	defer server.Close()
	svc := newTestService(t, server.URL)

	vec, err := svc.Embed(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, float32('a'), vec[0])

	_, err = svc.Embed(context.Background(), "beta")
	require.NoError(t, err)

	stats := svc.UsageStats()
	assert.Equal(t, 14, stats.TotalTokens)
	assert.Equal(t, "text-embedding-3-small", stats.Model)
	assert.InDelta(t, 14.0/1_000_000*0.02, stats.EstimatedCostUSD, 1e-12)
}

func TestEmbedFailureIsServiceError(t *testing.T) {
	server := newEmbedServer(t, map[string]bool{"bad": true})
	defer server.Close()
	svc := newTestService(t, server.URL)

	_, err := svc.Embed(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, domain.IsServiceError(err), "embedding failures must surface as ServiceError")

	// A failed call bills nothing.
	assert.Equal(t, 0, svc.UsageStats().TotalTokens)
}

func TestEmbedBatchPreservesOrderAndSubstitutesZeroVectors(t *testing.T) {
	server := newEmbedServer(t, map[string]bool{"second": true})
	defer server.Close()
	svc := newTestService(t, server.URL)

	texts := []string{"first", "second", "third"}
	vectors, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err, "one item's failure must not abort the batch")
	require.Len(t, vectors, 3)

	assert.Equal(t, float32('f'), vectors[0][0])
	assert.Equal(t, []float32{0, 0, 0}, vectors[1], "failed position holds a zero vector of the configured dimension")
	assert.Equal(t, float32('t'), vectors[2][0])
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	server := newEmbedServer(t, nil)
	defer server.Close()
	svc := newTestService(t, server.URL)

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedBatchHonoursCancellation(t *testing.T) {
	server := newEmbedServer(t, nil)
	defer server.Close()
	svc := newTestService(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EmbedBatch(ctx, []string{"first", "second"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)
	assert.NoError(t, svc.Ping(context.Background()))
}
