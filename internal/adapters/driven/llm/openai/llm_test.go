package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regwatch-labs/regrag-cli/internal/core/domain"
	"github.com/regwatch-labs/regrag-cli/internal/core/ports/driven"
)

func TestGenerate(t *testing.T) {
	var captured chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Per [Document 1], ESMA requires..."}, "finish_reason": "stop"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-5-nano"})
	require.NoError(t, err)

	answer, err := svc.Generate(context.Background(), "system rules", "question + context",
		driven.GenerateOptions{MaxTokens: 1000})
	require.NoError(t, err)
	assert.Contains(t, answer, "[Document 1]")

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "system rules", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, 1000, captured.MaxCompletionTokens)
}

func TestGenerateFailureIsServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "s", "u", driven.GenerateOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsServiceError(err))
}

func TestNewLLMServiceRequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}
